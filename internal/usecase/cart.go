package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lguillozl/ecommerce-api/internal/entity"
)

// CartService owns the cart and cart-line lifecycle: lazy cart
// creation, line add/update/soft-remove and reactivation. Stock is
// checked here but never mutated; only the purchase transaction
// touches it.
type CartService struct {
	products ProductRepo
	carts    CartRepo
}

func NewCartService(products ProductRepo, carts CartRepo) *CartService {
	return &CartService{products: products, carts: carts}
}

// ActiveCart returns the caller's active cart with active lines and
// product summaries. Having no cart yet is not an error: the caller
// gets an empty, unsaved cart shell.
func (s *CartService) ActiveCart(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.carts.GetActiveCartLines(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &entity.Cart{UserID: userID, Status: entity.CartActive}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) AddLine(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.products.GetActive(ctx, productID)
	if errors.Is(err, ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if quantity > product.Quantity {
		return &InsufficientStockError{Available: product.Quantity}
	}

	cart, err := s.carts.GetActiveCart(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		cart, err = s.createCart(ctx, userID)
		if err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("load cart: %w", err)
	}

	line, err := s.carts.FindLine(ctx, cart.ID, productID)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.carts.CreateLine(ctx, &entity.CartLine{
			ID:        uuid.NewString(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Status:    entity.LineActive,
		})
	case err != nil:
		return fmt.Errorf("load line: %w", err)
	case line.Status == entity.LineActive:
		return &DuplicateLineError{Quantity: line.Quantity, Title: product.Title}
	default:
		// Soft-removed line: reactivate the same row instead of
		// inserting a duplicate.
		return s.carts.SetLine(ctx, line.ID, quantity, entity.LineActive)
	}
}

func (s *CartService) UpdateLine(ctx context.Context, userID, productID string, newQty int) error {
	cart, err := s.carts.GetActiveCart(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrNoActiveCart
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	product, err := s.products.GetActive(ctx, productID)
	if errors.Is(err, ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if newQty > product.Quantity {
		return &InsufficientStockError{Available: product.Quantity}
	}

	line, err := s.carts.FindLine(ctx, cart.ID, productID)
	if errors.Is(err, ErrNotFound) {
		return ErrLineNotFound
	}
	if err != nil {
		return fmt.Errorf("load line: %w", err)
	}
	if line.Status != entity.LineActive {
		return ErrLineNotFound
	}

	if newQty < 0 {
		return ErrInvalidQuantity
	}
	if newQty == 0 {
		return s.carts.SetLine(ctx, line.ID, 0, entity.LineRemoved)
	}
	return s.carts.SetLine(ctx, line.ID, newQty, entity.LineActive)
}

// RemoveLine soft-deletes a line; it is UpdateLine to zero addressed by
// path parameter, without the stock lookup.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID string) error {
	cart, err := s.carts.GetActiveCart(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrNoActiveCart
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	line, err := s.carts.FindLine(ctx, cart.ID, productID)
	if errors.Is(err, ErrNotFound) {
		return ErrLineNotFound
	}
	if err != nil {
		return fmt.Errorf("load line: %w", err)
	}
	if line.Status != entity.LineActive {
		return ErrLineNotFound
	}

	return s.carts.SetLine(ctx, line.ID, 0, entity.LineRemoved)
}

// createCart inserts an active cart, re-reading on conflict so that
// concurrent first adds converge on a single cart row.
func (s *CartService) createCart(ctx context.Context, userID string) (*entity.Cart, error) {
	cart := &entity.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    entity.CartActive,
		CreatedAt: time.Now().UTC(),
	}
	err := s.carts.CreateCart(ctx, cart)
	if errors.Is(err, ErrConflict) {
		return s.carts.GetActiveCart(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}
