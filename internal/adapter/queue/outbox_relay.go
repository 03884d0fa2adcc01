package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/lguillozl/ecommerce-api/internal/adapter/repo"
	"github.com/lguillozl/ecommerce-api/internal/logging"
)

// Publisher is the bit of the producer the relay needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OutboxSource reads and settles pending outbox rows.
type OutboxSource interface {
	FetchPending(ctx context.Context, limit int) ([]repo.OutboxRow, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error
}

// OutboxRelay drains PENDING outbox rows to RabbitMQ on a fixed tick.
// Delivery is at-least-once: a crash between Publish and MarkSent means
// the row is published again on the next pass.
type OutboxRelay struct {
	src       OutboxSource
	pub       Publisher
	interval  time.Duration
	batchSize int
	log       *slog.Logger
}

func NewOutboxRelay(src OutboxSource, pub Publisher, interval time.Duration, batchSize int) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxRelay{
		src:       src,
		pub:       pub,
		interval:  interval,
		batchSize: batchSize,
		log:       logging.New("outbox-relay"),
	}
}

// Run blocks until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *OutboxRelay) drain(ctx context.Context) {
	rows, err := r.src.FetchPending(ctx, r.batchSize)
	if err != nil {
		r.log.Error("fetch pending outbox rows", "error", err)
		return
	}

	for _, row := range rows {
		if err := r.pub.Publish(ctx, row.Channel, row.Payload); err != nil {
			next := time.Now().Add(backoff(row.RetryCount))
			r.log.Error("publish outbox row",
				"id", row.ID, "channel", row.Channel, "retry", row.RetryCount, "error", err)
			if err := r.src.MarkFailed(ctx, row.ID, next); err != nil {
				r.log.Error("mark outbox row failed", "id", row.ID, "error", err)
			}
			continue
		}
		if err := r.src.MarkSent(ctx, row.ID); err != nil {
			r.log.Error("mark outbox row sent", "id", row.ID, "error", err)
		}
	}
}

// backoff doubles per retry, capped at five minutes.
func backoff(retries int) time.Duration {
	d := 2 * time.Second
	for i := 0; i < retries && d < 5*time.Minute; i++ {
		d *= 2
	}
	if d > 5*time.Minute {
		d = 5 * time.Minute
	}
	return d
}
