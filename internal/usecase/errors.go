package usecase

import (
	"errors"
	"fmt"
)

// Request-scoped failures surfaced to the caller. Handlers map these to
// 404 (not-found family) or 400 (validation family); anything else is a 500.
var (
	ErrProductNotFound = errors.New("there is no product with that ID")
	ErrNoActiveCart    = errors.New("there is no active cart for this user")
	ErrLineNotFound    = errors.New("you don't have that product in your cart")
	ErrInvalidQuantity = errors.New("you can't set a negative quantity")
	ErrDuplicateKey    = errors.New("duplicate idempotency key")
	ErrOrderNotFound   = errors.New("order not found")
)

// InsufficientStockError carries the quantity still available so the
// message can cite it.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("this product only has %d items available", e.Available)
}

// DuplicateLineError is returned when a product already sits active in
// the cart; the caller must use the update operation instead.
type DuplicateLineError struct {
	Quantity int
	Title    string
}

func (e *DuplicateLineError) Error() string {
	return fmt.Sprintf("you already have %d %s in your cart; to add more, change the quantity instead", e.Quantity, e.Title)
}
