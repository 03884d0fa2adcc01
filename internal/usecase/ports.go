package usecase

import (
	"context"
	"errors"

	"github.com/lguillozl/ecommerce-api/internal/entity"
)

// Sentinels shared by every persistence adapter.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type ProductRepo interface {
	// GetActive returns the product only if its status is active;
	// missing and removed products both map to ErrNotFound.
	GetActive(ctx context.Context, id string) (*entity.Product, error)

	// AdjustStock applies a signed delta to the stock counter without
	// letting it drop below zero.
	AdjustStock(ctx context.Context, id string, delta int) error
}

type CartRepo interface {
	// GetActiveCart returns the caller's active cart without lines, or
	// ErrNotFound when no active cart exists.
	GetActiveCart(ctx context.Context, userID string) (*entity.Cart, error)

	// GetActiveCartLines returns the active cart with its active lines
	// and joined product summaries.
	GetActiveCartLines(ctx context.Context, userID string) (*entity.Cart, error)

	// CreateCart inserts a new active cart. ErrConflict signals that a
	// concurrent request created one first; callers re-read instead.
	CreateCart(ctx context.Context, c *entity.Cart) error

	// FindLine looks a line up regardless of status (there is at most
	// one row per cart/product pair).
	FindLine(ctx context.Context, cartID, productID string) (*entity.CartLine, error)

	CreateLine(ctx context.Context, ln *entity.CartLine) error

	// SetLine rewrites quantity and status of an existing line.
	SetLine(ctx context.Context, lineID string, quantity int, status entity.LineStatus) error
}

// CatalogRepo is the write/browse side of the product catalog, used by
// the product handlers; the cart paths only need ProductRepo.
type CatalogRepo interface {
	CreateProduct(ctx context.Context, p *entity.Product) error
	ListActive(ctx context.Context) ([]entity.Product, error)
	UpdateProduct(ctx context.Context, p *entity.Product) error
	RemoveProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CreateCategory(ctx context.Context, c *entity.Category) error
}

type UserRepo interface {
	// Create inserts a new user; ErrConflict on a taken email.
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type OrderRepo interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	GetByID(ctx context.Context, userID, orderID string) (*entity.Order, error)
}

// CheckoutStore commits a purchase as one transaction: conditional
// stock decrements, line and cart transitions, the order row and the
// outbox event either all land or none do.
type CheckoutStore interface {
	Commit(ctx context.Context, cart *entity.Cart, lines []entity.CartLine, order *entity.Order, event []byte) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Release frees a lock taken by TryLock so a failed purchase can be
	// retried with the same key before the TTL runs out.
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// OrderCache keeps a short-lived order summary keyed by order id,
// warmed from purchase events and read on order lookups before MySQL.
type OrderCache interface {
	SetOrder(ctx context.Context, msg CartPurchasedMsg) error
	GetOrder(ctx context.Context, orderID string) (CartPurchasedMsg, bool, error)
}
