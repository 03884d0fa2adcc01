package repo

import (
	"context"
	"database/sql"
	"time"
)

// OutboxRow is one pending event written by the checkout transaction.
type OutboxRow struct {
	ID         int64
	Channel    string
	Payload    []byte
	RetryCount int
}

// MySQLOutboxRepo is the relay's view of the outbox table. Rows are
// inserted by MySQLCheckoutStore inside the purchase transaction.
type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, channel, payload, retry_count FROM outbox
WHERE status = 'PENDING' AND next_attempt_at <= NOW()
ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Channel, &row.Payload, &row.RetryCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'SENT' WHERE id = ?`, id)
	return err
}

// MarkFailed schedules a retry; backoff grows with the retry count on
// the relay side.
func (r *MySQLOutboxRepo) MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET retry_count = retry_count + 1, next_attempt_at = ?
WHERE id = ?`, nextAttempt, id)
	return err
}
