package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

type MySQLUserRepo struct{ db *sql.DB }

func NewMySQLUserRepo(db *sql.DB) *MySQLUserRepo { return &MySQLUserRepo{db: db} }

func (r *MySQLUserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, role, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, NOW())`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Status)
	if isDuplicateEntry(err) {
		return usecase.ErrConflict
	}
	return err
}

func (r *MySQLUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, email, password_hash, role, status, created_at
FROM users WHERE email = ? AND status = ?`, email, entity.UserActive)

	var u entity.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ usecase.UserRepo = (*MySQLUserRepo)(nil)
