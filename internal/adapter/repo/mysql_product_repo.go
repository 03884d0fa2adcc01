package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

const productColumns = `id, title, description, price, quantity, status, category_id, user_id, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
		&p.Status, &p.CategoryID, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductRepo) GetActive(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+productColumns+` FROM products WHERE id = ? AND status = ?`, id, entity.ProductActive)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	return p, err
}

func (r *MySQLProductRepo) CreateProduct(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id, title, description, price, quantity, status, category_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		p.ID, p.Title, p.Description, p.Price, p.Quantity, p.Status, p.CategoryID, p.UserID)
	return err
}

func (r *MySQLProductRepo) ListActive(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+productColumns+` FROM products WHERE status = ? ORDER BY created_at DESC`, entity.ProductActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *MySQLProductRepo) UpdateProduct(ctx context.Context, p *entity.Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET title = ?, description = ?, price = ?, quantity = ?, updated_at = NOW()
WHERE id = ? AND status = ?`,
		p.Title, p.Description, p.Price, p.Quantity, p.ID, entity.ProductActive)
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

func (r *MySQLProductRepo) RemoveProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET status = ?, updated_at = NOW()
WHERE id = ? AND status = ?`, entity.ProductRemoved, id, entity.ProductActive)
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

// AdjustStock applies a signed warehouse delta. GREATEST keeps the
// counter from going negative on oversized corrections.
func (r *MySQLProductRepo) AdjustStock(ctx context.Context, id string, delta int) error {
	// RowsAffected is not checked here: a clamped adjustment can leave
	// the value unchanged, which MySQL reports as zero rows.
	_, err := r.db.ExecContext(ctx, `
UPDATE products SET quantity = GREATEST(0, CAST(quantity AS SIGNED) + ?), updated_at = NOW()
WHERE id = ?`, delta, id)
	return err
}

func (r *MySQLProductRepo) ListCategories(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, status FROM categories WHERE status = 'active' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MySQLProductRepo) CreateCategory(ctx context.Context, c *entity.Category) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (id, name, status) VALUES (?, ?, 'active')`, c.ID, c.Name)
	if isDuplicateEntry(err) {
		return usecase.ErrConflict
	}
	return err
}

var (
	_ usecase.ProductRepo = (*MySQLProductRepo)(nil)
	_ usecase.CatalogRepo = (*MySQLProductRepo)(nil)
)
