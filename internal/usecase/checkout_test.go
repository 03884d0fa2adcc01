package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguillozl/ecommerce-api/internal/entity"
)

// checkoutFixture seeds a catalog and an active cart with two items,
// returning the collaborators wired into a Checkout.
func checkoutFixture(t *testing.T) (*Checkout, *fakeCartRepo, *fakeCheckoutStore, *fakeIdemStore) {
	t.Helper()
	pr := newFakeProductRepo(
		activeProduct("p1", "Keyboard", "10.00", 20),
		activeProduct("p2", "Mouse", "15.00", 20),
	)
	cr := newFakeCartRepo(pr)
	svc := NewCartService(pr, cr)

	ctx := context.Background()
	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.AddLine(ctx, "u1", "p2", 1))

	store := &fakeCheckoutStore{products: pr, carts: cr}
	idem := newFakeIdemStore()
	return NewCheckout(cr, store, idem), cr, store, idem
}

func TestPurchase_CommitsCartSnapshot(t *testing.T) {
	uc, _, store, _ := checkoutFixture(t)

	out, err := uc.Purchase(context.Background(), "u1", "")
	require.NoError(t, err)

	// 2 x 10.00 + 1 x 15.00
	assert.Equal(t, "35.00", out.TotalPrice)
	assert.NotEmpty(t, out.OrderID)

	require.Equal(t, 1, store.commits)
	require.NotNil(t, store.order)
	assert.Equal(t, out.OrderID, store.order.ID)
	assert.Equal(t, "u1", store.order.UserID)
	assert.Equal(t, entity.OrderPurchased, store.order.Status)
	assert.True(t, store.order.TotalPrice.Equal(entity.TotalPrice(store.lines)))
	assert.Len(t, store.lines, 2)
}

func TestPurchase_EventPayload(t *testing.T) {
	uc, _, store, _ := checkoutFixture(t)

	out, err := uc.Purchase(context.Background(), "u1", "")
	require.NoError(t, err)

	var msg CartPurchasedMsg
	require.NoError(t, json.Unmarshal(store.event, &msg))
	assert.Equal(t, out.OrderID, msg.OrderID)
	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, "35.00", msg.TotalPrice)
	assert.Equal(t, entity.StatusPurchased, msg.Status)
	assert.NotEmpty(t, msg.CreatedAt)
}

func TestPurchase_DecrementsStock(t *testing.T) {
	pr := newFakeProductRepo(
		activeProduct("p1", "Keyboard", "10.00", 10),
		activeProduct("p2", "Mouse", "15.00", 5),
	)
	cr := newFakeCartRepo(pr)
	svc := NewCartService(pr, cr)

	ctx := context.Background()
	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 3))
	require.NoError(t, svc.AddLine(ctx, "u1", "p2", 1))

	store := &fakeCheckoutStore{products: pr, carts: cr}
	uc := NewCheckout(cr, store, newFakeIdemStore())

	cart, err := cr.GetActiveCart(ctx, "u1")
	require.NoError(t, err)

	_, err = uc.Purchase(ctx, "u1", "")
	require.NoError(t, err)

	assert.Equal(t, 7, pr.products["p1"].Quantity)
	assert.Equal(t, 4, pr.products["p2"].Quantity)

	// Lines freeze at purchase with the unit price they were bought at,
	// and the cart reaches its terminal status.
	ln := cr.line(cart.ID, "p1")
	require.NotNil(t, ln)
	assert.Equal(t, entity.LinePurchased, ln.Status)
	assert.True(t, ln.UnitPrice.Valid)
	assert.Equal(t, "10.00", ln.UnitPrice.Decimal.StringFixed(2))
	assert.Equal(t, entity.CartPurchased, cr.carts[cart.ID].Status)
}

func TestPurchase_InsufficientStockRollsBack(t *testing.T) {
	pr := newFakeProductRepo(
		activeProduct("p1", "Keyboard", "10.00", 2),
		activeProduct("p2", "Mouse", "15.00", 5),
	)
	cr := newFakeCartRepo(pr)
	svc := NewCartService(pr, cr)

	ctx := context.Background()
	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.AddLine(ctx, "u1", "p2", 1))

	// A competing purchase drains the stock between add and checkout.
	pr.products["p1"].Quantity = 1

	store := &fakeCheckoutStore{products: pr, carts: cr}
	uc := NewCheckout(cr, store, newFakeIdemStore())

	cart, err := cr.GetActiveCart(ctx, "u1")
	require.NoError(t, err)

	_, err = uc.Purchase(ctx, "u1", "")
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)

	// Nothing moved: stock untouched, lines still active, cart still
	// active, no order committed.
	assert.Equal(t, 0, store.commits)
	assert.Equal(t, 1, pr.products["p1"].Quantity)
	assert.Equal(t, 5, pr.products["p2"].Quantity)
	assert.Equal(t, entity.LineActive, cr.line(cart.ID, "p1").Status)
	assert.Equal(t, entity.LineActive, cr.line(cart.ID, "p2").Status)
	assert.Equal(t, entity.CartActive, cr.carts[cart.ID].Status)
}

func TestPurchase_FailedCommitReleasesKey(t *testing.T) {
	uc, _, store, idem := checkoutFixture(t)
	store.err = errors.New("connection reset")

	_, err := uc.Purchase(context.Background(), "u1", "key-1")
	require.Error(t, err)
	assert.Empty(t, idem.known)

	// The same key must work once the fault clears, not 409 until the
	// TTL expires.
	store.err = nil
	out, err := uc.Purchase(context.Background(), "u1", "key-1")
	require.NoError(t, err)
	assert.NotEmpty(t, out.OrderID)
	assert.Equal(t, 1, store.commits)
}

func TestPurchase_NoActiveCart(t *testing.T) {
	pr := newFakeProductRepo()
	cr := newFakeCartRepo(pr)
	store := &fakeCheckoutStore{}
	uc := NewCheckout(cr, store, newFakeIdemStore())

	_, err := uc.Purchase(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrNoActiveCart)
	assert.Equal(t, 0, store.commits)
}

func TestPurchase_StoreFailurePropagates(t *testing.T) {
	uc, _, store, _ := checkoutFixture(t)
	store.err = &InsufficientStockError{Available: 1}

	_, err := uc.Purchase(context.Background(), "u1", "")
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 0, store.commits)
}

func TestPurchase_IdempotentReplayReturnsOriginalOrder(t *testing.T) {
	uc, _, store, _ := checkoutFixture(t)

	first, err := uc.Purchase(context.Background(), "u1", "key-1")
	require.NoError(t, err)
	require.Equal(t, 1, store.commits)

	// Same key again: the remembered order id comes back and the store
	// is not touched a second time.
	second, err := uc.Purchase(context.Background(), "u1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, store.commits)
}

func TestPurchase_InFlightDuplicateKey(t *testing.T) {
	uc, _, store, idem := checkoutFixture(t)

	// Simulate a first request that holds the lock but has not finished.
	ok, err := idem.TryLock(context.Background(), "u1", "key-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = uc.Purchase(context.Background(), "u1", "key-1")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 0, store.commits)
}

func TestPurchase_EmptyKeySkipsIdempotency(t *testing.T) {
	uc, _, store, idem := checkoutFixture(t)

	_, err := uc.Purchase(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Empty(t, idem.known)
	assert.Equal(t, 1, store.commits)
}
