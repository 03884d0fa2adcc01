package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lguillozl/ecommerce-api/internal/entity"
)

// Checkout converts an active cart into a purchased order. The store
// commit is a single transaction; this orchestrator only assembles the
// snapshot and handles idempotent replays.
type Checkout struct {
	carts CartRepo
	store CheckoutStore
	idem  IdempotencyStore
}

func NewCheckout(carts CartRepo, store CheckoutStore, idem IdempotencyStore) *Checkout {
	return &Checkout{carts: carts, store: store, idem: idem}
}

type PurchaseOutput struct {
	OrderID    string
	TotalPrice string
}

// Purchase runs the checkout for the caller's active cart. idemKey may
// be empty; when set, a replayed key returns the original order id
// without touching the store again.
func (uc *Checkout) Purchase(ctx context.Context, userID, idemKey string) (PurchaseOutput, error) {
	var locked bool
	// A failed purchase must not burn the key for the whole TTL; the
	// lock is only kept once the commit has gone through.
	fail := func(err error) (PurchaseOutput, error) {
		if locked {
			_ = uc.idem.Release(ctx, userID, idemKey)
		}
		return PurchaseOutput{}, err
	}

	if idemKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, userID, idemKey); ok {
			return PurchaseOutput{OrderID: id}, nil
		}
		ok, err := uc.idem.TryLock(ctx, userID, idemKey)
		if err != nil {
			return PurchaseOutput{}, fmt.Errorf("idempotency lock: %w", err)
		}
		if !ok {
			return PurchaseOutput{}, ErrDuplicateKey
		}
		locked = true
	}

	cart, err := uc.carts.GetActiveCartLines(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return fail(ErrNoActiveCart)
	}
	if err != nil {
		return fail(fmt.Errorf("load cart: %w", err))
	}

	lines := cart.ActiveLines()
	total := entity.TotalPrice(lines)

	order := &entity.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		CartID:     cart.ID,
		TotalPrice: total,
		Status:     entity.OrderPurchased,
		CreatedAt:  time.Now().UTC(),
	}

	event, err := json.Marshal(CartPurchasedMsg{
		OrderID:    order.ID,
		UserID:     userID,
		CartID:     cart.ID,
		TotalPrice: total.StringFixed(2),
		Status:     entity.StatusPurchased,
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fail(fmt.Errorf("marshal event: %w", err))
	}

	if err := uc.store.Commit(ctx, cart, lines, order, event); err != nil {
		return fail(err)
	}

	if idemKey != "" {
		_ = uc.idem.Remember(ctx, userID, idemKey, order.ID)
	}
	return PurchaseOutput{OrderID: order.ID, TotalPrice: total.StringFixed(2)}, nil
}
