package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

// MySQLOrderRepo serves the read side of order history; orders are only
// ever written inside the checkout transaction.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, cart_id, total_price, status, created_at
FROM orders WHERE user_id = ? AND status = ? ORDER BY created_at DESC`,
		userID, entity.OrderPurchased)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, cart_id, total_price, status, created_at
FROM orders WHERE id = ? AND user_id = ? AND status = ?`,
		orderID, userID, entity.OrderPurchased)

	var o entity.Order
	if err := row.Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
