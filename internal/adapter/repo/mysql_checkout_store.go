package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

const purchasedChannel = "cart.purchased.v1"

// MySQLCheckoutStore commits a purchase in one transaction. Stock is
// taken with a conditional decrement so that two concurrent checkouts
// cannot both pass an advisory read-then-compare check and overcommit.
type MySQLCheckoutStore struct{ db *sql.DB }

func NewMySQLCheckoutStore(db *sql.DB) *MySQLCheckoutStore { return &MySQLCheckoutStore{db: db} }

func (s *MySQLCheckoutStore) Commit(ctx context.Context, cart *entity.Cart, lines []entity.CartLine, order *entity.Order, event []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, ln := range lines {
		res, err := tx.ExecContext(ctx, `
UPDATE products SET quantity = quantity - ?, updated_at = NOW()
WHERE id = ? AND quantity >= ?`, ln.Quantity, ln.ProductID, ln.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock %s: %w", ln.ProductID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Not enough stock (or product gone); the whole purchase
			// rolls back. Re-read what is left for the error message.
			var available int
			_ = tx.QueryRowContext(ctx,
				`SELECT quantity FROM products WHERE id = ?`, ln.ProductID).Scan(&available)
			return &usecase.InsufficientStockError{Available: available}
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE cart_lines SET status = ?, unit_price = ?, updated_at = NOW()
WHERE id = ?`, entity.LinePurchased, ln.Product.Price, ln.ID); err != nil {
			return fmt.Errorf("mark line purchased %s: %w", ln.ID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
UPDATE carts SET status = ?, updated_at = NOW()
WHERE id = ? AND status = ?`, entity.CartPurchased, cart.ID, entity.CartActive)
	if err != nil {
		return fmt.Errorf("mark cart purchased: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// A concurrent purchase of the same cart won the race.
		return usecase.ErrNoActiveCart
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id, user_id, cart_id, total_price, status, created_at)
VALUES (?, ?, ?, ?, ?, NOW())`,
		order.ID, order.UserID, order.CartID, order.TotalPrice, order.Status); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO outbox (channel, payload, status, retry_count, next_attempt_at, created_at)
VALUES (?, ?, 'PENDING', 0, NOW(), NOW())`, purchasedChannel, event); err != nil {
		return fmt.Errorf("enqueue outbox: %w", err)
	}

	return tx.Commit()
}

var _ usecase.CheckoutStore = (*MySQLCheckoutStore)(nil)
