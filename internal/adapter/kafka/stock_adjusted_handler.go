package kafka

import (
	"context"
	"log/slog"

	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

// StockAdjustedHandler applies warehouse stock adjustments to the
// product catalog.
type StockAdjustedHandler struct {
	Products usecase.ProductRepo
	log      *slog.Logger
}

func NewStockAdjustedHandler(products usecase.ProductRepo) *StockAdjustedHandler {
	return &StockAdjustedHandler{
		Products: products,
		log:      logging.New("stock-adjusted-handler"),
	}
}

func (h *StockAdjustedHandler) Handle(ctx context.Context, ev usecase.StockAdjustedMsg) error {
	if ev.ProductID == "" || ev.Delta == 0 {
		return nil
	}
	if err := h.Products.AdjustStock(ctx, ev.ProductID, ev.Delta); err != nil {
		return err
	}
	h.log.Info("stock adjusted",
		"product_id", ev.ProductID, "delta", ev.Delta, "reason", ev.Reason)
	return nil
}
