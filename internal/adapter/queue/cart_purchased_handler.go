package queue

import (
	"context"
	"log/slog"

	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

// NewCartPurchasedHandler warms the order cache from purchase events,
// so order lookups can skip MySQL right after checkout.
func NewCartPurchasedHandler(cache usecase.OrderCache) Handler {
	log := logging.New("cart-purchased-handler")
	return JSONHandler[usecase.CartPurchasedMsg]{
		HandleFunc: func(ctx context.Context, msg usecase.CartPurchasedMsg) error {
			if err := cache.SetOrder(ctx, msg); err != nil {
				return err
			}
			log.Info("order summary cached",
				slog.String("order_id", msg.OrderID),
				slog.String("status", msg.Status))
			return nil
		},
	}
}
