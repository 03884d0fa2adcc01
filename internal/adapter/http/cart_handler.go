package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http/middleware"
	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
	"github.com/shopspring/decimal"
)

type CartService interface {
	ActiveCart(ctx context.Context, userID string) (*entity.Cart, error)
	AddLine(ctx context.Context, userID, productID string, quantity int) error
	UpdateLine(ctx context.Context, userID, productID string, newQty int) error
	RemoveLine(ctx context.Context, userID, productID string) error
}

type PurchaseService interface {
	Purchase(ctx context.Context, userID, idemKey string) (usecase.PurchaseOutput, error)
}

type CartHandler struct {
	cart     CartService
	checkout PurchaseService
}

func NewCartHandler(cart CartService, checkout PurchaseService) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

type cartLineResp struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Status    string          `json:"status"`
	Product   entity.Summary  `json:"product"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartResp struct {
	ID     string         `json:"id,omitempty"`
	UserID string         `json:"userId"`
	Status string         `json:"status"`
	Lines  []cartLineResp `json:"products"`
	Total  string         `json:"totalPrice"`
}

func toCartResp(cart *entity.Cart) cartResp {
	resp := cartResp{
		ID:     cart.ID,
		UserID: cart.UserID,
		Status: string(cart.Status),
		Lines:  make([]cartLineResp, 0, len(cart.Lines)),
	}
	for _, ln := range cart.Lines {
		resp.Lines = append(resp.Lines, cartLineResp{
			ID:        ln.ID,
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			Status:    string(ln.Status),
			Product:   ln.Product,
			LineTotal: ln.Product.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))),
		})
	}
	resp.Total = entity.TotalPrice(cart.ActiveLines()).StringFixed(2)
	return resp
}

// GetCart returns the caller's active cart; no cart yet is an empty
// cart, not an error.
func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cart, err := h.cart.ActiveCart(ctx, c.GetString(middleware.UserIDKey))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "cart": toCartResp(cart)})
}

type addProductReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func (h *CartHandler) AddProduct(c *gin.Context) {
	var req addProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.AddLine(ctx, c.GetString(middleware.UserIDKey), req.ProductID, req.Quantity); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product successfully added to cart"})
}

type updateProductReq struct {
	ProductID string `json:"productId" binding:"required"`
	NewQty    *int   `json:"newQty" binding:"required"`
}

func (h *CartHandler) UpdateProduct(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.UpdateLine(ctx, c.GetString(middleware.UserIDKey), req.ProductID, *req.NewQty); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product quantity successfully updated"})
}

func (h *CartHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.RemoveLine(ctx, c.GetString(middleware.UserIDKey), c.Param("productId")); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product successfully deleted from cart"})
}

func (h *CartHandler) Purchase(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.checkout.Purchase(ctx,
		c.GetString(middleware.UserIDKey),
		c.GetHeader("X-Idempotency-Key"))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "cart successfully purchased",
		"orderId": out.OrderID,
	})
}

// writeCartError maps the cart/checkout taxonomy onto HTTP statuses:
// absent things are 404, validation failures 400, idempotency replays
// in flight 409, anything unexpected 500.
func writeCartError(c *gin.Context, err error) {
	var stockErr *usecase.InsufficientStockError
	var dupErr *usecase.DuplicateLineError

	switch {
	case errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, usecase.ErrNoActiveCart),
		errors.Is(err, usecase.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr), errors.As(err, &dupErr),
		errors.Is(err, usecase.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.From(c).Error("cart operation failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
