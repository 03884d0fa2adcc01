package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

const mysqlErrDuplicateEntry = 1062

type MySQLCartRepo struct{ db *sql.DB }

func NewMySQLCartRepo(db *sql.DB) *MySQLCartRepo { return &MySQLCartRepo{db: db} }

func (r *MySQLCartRepo) GetActiveCart(ctx context.Context, userID string) (*entity.Cart, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM carts WHERE user_id = ? AND status = ?`, userID, entity.CartActive)

	var c entity.Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MySQLCartRepo) GetActiveCartLines(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := r.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT l.id, l.cart_id, l.product_id, l.quantity, l.status, l.unit_price,
       p.id, p.title, p.description, p.price
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.cart_id = ? AND l.status = ?`, cart.ID, entity.LineActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ln entity.CartLine
		if err := rows.Scan(
			&ln.ID, &ln.CartID, &ln.ProductID, &ln.Quantity, &ln.Status, &ln.UnitPrice,
			&ln.Product.ID, &ln.Product.Title, &ln.Product.Description, &ln.Product.Price,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *MySQLCartRepo) CreateCart(ctx context.Context, c *entity.Cart) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO carts (id, user_id, status, created_at, updated_at)
VALUES (?, ?, ?, NOW(), NOW())`, c.ID, c.UserID, c.Status)
	if isDuplicateEntry(err) {
		return usecase.ErrConflict
	}
	return err
}

func (r *MySQLCartRepo) FindLine(ctx context.Context, cartID, productID string) (*entity.CartLine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, cart_id, product_id, quantity, status, unit_price
FROM cart_lines WHERE cart_id = ? AND product_id = ?`, cartID, productID)

	var ln entity.CartLine
	if err := row.Scan(&ln.ID, &ln.CartID, &ln.ProductID, &ln.Quantity, &ln.Status, &ln.UnitPrice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &ln, nil
}

func (r *MySQLCartRepo) CreateLine(ctx context.Context, ln *entity.CartLine) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO cart_lines (id, cart_id, product_id, quantity, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, NOW(), NOW())`, ln.ID, ln.CartID, ln.ProductID, ln.Quantity, ln.Status)
	if isDuplicateEntry(err) {
		return usecase.ErrConflict
	}
	return err
}

func (r *MySQLCartRepo) SetLine(ctx context.Context, lineID string, quantity int, status entity.LineStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE cart_lines SET quantity = ?, status = ?, updated_at = NOW()
WHERE id = ?`, quantity, status, lineID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

var _ usecase.CartRepo = (*MySQLCartRepo)(nil)
