package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lguillozl/ecommerce-api/internal/entity"
)

func newCartService(products ...*entity.Product) (*CartService, *fakeProductRepo, *fakeCartRepo) {
	pr := newFakeProductRepo(products...)
	cr := newFakeCartRepo(pr)
	return NewCartService(pr, cr), pr, cr
}

func TestActiveCart_NoCartYet(t *testing.T) {
	svc, _, _ := newCartService()

	cart, err := svc.ActiveCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.ID)
	assert.Equal(t, "u1", cart.UserID)
	assert.Equal(t, entity.CartActive, cart.Status)
	assert.Empty(t, cart.Lines)
}

func TestAddLine_CreatesCartAndLine(t *testing.T) {
	svc, _, carts := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))

	require.NoError(t, svc.AddLine(context.Background(), "u1", "p1", 2))

	cart, err := carts.GetActiveCart(context.Background(), "u1")
	require.NoError(t, err)
	ln := carts.line(cart.ID, "p1")
	require.NotNil(t, ln)
	assert.Equal(t, 2, ln.Quantity)
	assert.Equal(t, entity.LineActive, ln.Status)
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))

	assert.ErrorIs(t, svc.AddLine(context.Background(), "u1", "p1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.AddLine(context.Background(), "u1", "p1", -3), ErrInvalidQuantity)
}

func TestAddLine_UnknownProduct(t *testing.T) {
	svc, _, _ := newCartService()

	err := svc.AddLine(context.Background(), "u1", "missing", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddLine_RemovedProduct(t *testing.T) {
	p := activeProduct("p1", "Keyboard", "10.00", 5)
	p.Status = entity.ProductRemoved
	svc, _, _ := newCartService(p)

	err := svc.AddLine(context.Background(), "u1", "p1", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddLine_InsufficientStock(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 3))

	err := svc.AddLine(context.Background(), "u1", "p1", 4)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)
	assert.Contains(t, err.Error(), "3 items available")
}

func TestAddLine_DuplicateActiveLine(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))

	err := svc.AddLine(ctx, "u1", "p1", 1)
	var dupErr *DuplicateLineError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, 2, dupErr.Quantity)
	assert.Equal(t, "Keyboard", dupErr.Title)
}

func TestAddLine_ReactivatesRemovedLine(t *testing.T) {
	svc, _, carts := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.RemoveLine(ctx, "u1", "p1"))

	// Re-adding after removal flips the same row back to active.
	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 4))

	cart, err := carts.GetActiveCart(ctx, "u1")
	require.NoError(t, err)
	ln := carts.line(cart.ID, "p1")
	require.NotNil(t, ln)
	assert.Equal(t, entity.LineActive, ln.Status)
	assert.Equal(t, 4, ln.Quantity)
}

func TestAddLine_ConcurrentFirstAddsShareOneCart(t *testing.T) {
	products := []*entity.Product{
		activeProduct("p1", "Keyboard", "10.00", 100),
		activeProduct("p2", "Mouse", "15.00", 100),
		activeProduct("p3", "Monitor", "200.00", 100),
		activeProduct("p4", "Cable", "5.00", 100),
	}
	svc, _, carts := newCartService(products...)

	var g errgroup.Group
	for _, p := range products {
		id := p.ID
		g.Go(func() error {
			return svc.AddLine(context.Background(), "u1", id, 1)
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, carts.activeCartCount("u1"))

	cart, err := carts.GetActiveCartLines(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, len(products))
}

func TestUpdateLine_NoActiveCart(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))

	err := svc.UpdateLine(context.Background(), "u1", "p1", 1)
	assert.ErrorIs(t, err, ErrNoActiveCart)
}

func TestUpdateLine_ChangesQuantity(t *testing.T) {
	svc, _, carts := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.UpdateLine(ctx, "u1", "p1", 5))

	cart, err := carts.GetActiveCart(ctx, "u1")
	require.NoError(t, err)
	ln := carts.line(cart.ID, "p1")
	require.NotNil(t, ln)
	assert.Equal(t, 5, ln.Quantity)
	assert.Equal(t, entity.LineActive, ln.Status)
}

func TestUpdateLine_ZeroRemoves(t *testing.T) {
	svc, _, carts := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.UpdateLine(ctx, "u1", "p1", 0))

	cart, err := carts.GetActiveCart(ctx, "u1")
	require.NoError(t, err)
	ln := carts.line(cart.ID, "p1")
	require.NotNil(t, ln)
	assert.Equal(t, entity.LineRemoved, ln.Status)
	assert.Equal(t, 0, ln.Quantity)
}

func TestUpdateLine_NegativeQuantity(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	assert.ErrorIs(t, svc.UpdateLine(ctx, "u1", "p1", -1), ErrInvalidQuantity)
}

func TestUpdateLine_ExceedsStock(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 3))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))

	err := svc.UpdateLine(ctx, "u1", "p1", 10)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)
}

func TestUpdateLine_MissingLine(t *testing.T) {
	svc, _, _ := newCartService(
		activeProduct("p1", "Keyboard", "10.00", 5),
		activeProduct("p2", "Mouse", "15.00", 5),
	)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 1))
	assert.ErrorIs(t, svc.UpdateLine(ctx, "u1", "p2", 1), ErrLineNotFound)
}

func TestRemoveLine_SoftDeletes(t *testing.T) {
	svc, _, carts := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.RemoveLine(ctx, "u1", "p1"))

	cart, err := carts.GetActiveCartLines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestRemoveLine_AlreadyRemoved(t *testing.T) {
	svc, _, _ := newCartService(activeProduct("p1", "Keyboard", "10.00", 5))
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "u1", "p1", 2))
	require.NoError(t, svc.RemoveLine(ctx, "u1", "p1"))

	assert.ErrorIs(t, svc.RemoveLine(ctx, "u1", "p1"), ErrLineNotFound)
}

func TestRemoveLine_NoActiveCart(t *testing.T) {
	svc, _, _ := newCartService()

	assert.ErrorIs(t, svc.RemoveLine(context.Background(), "u1", "p1"), ErrNoActiveCart)
}
