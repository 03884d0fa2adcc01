package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lguillozl/ecommerce-api/configs"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http/middleware"
	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/security"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

type UserHandler struct {
	cfg    configs.Config
	users  usecase.UserRepo
	orders usecase.OrderRepo
	cache  usecase.OrderCache
}

func NewUserHandler(cfg configs.Config, users usecase.UserRepo, orders usecase.OrderRepo, cache usecase.OrderCache) *UserHandler {
	return &UserHandler{cfg: cfg, users: users, orders: orders, cache: cache}
}

type signupReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	role := entity.RoleStandard
	if req.Role == string(entity.RoleAdmin) {
		role = entity.RoleAdmin
	}
	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       entity.UserActive,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, usecase.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already in use"})
			return
		}
		logging.From(c).Error("create user failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "user successfully created",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil || !security.CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown email and wrong password.
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"id":  user.ID,
		"iss": h.cfg.Security.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(h.cfg.Security.TTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "login successful",
		"token":  signed,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

func (h *UserHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.orders.ListByUser(ctx, c.GetString(middleware.UserIDKey))
	if err != nil {
		logging.From(c).Error("list orders failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no orders found for this user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResps(orders)})
}

func (h *UserHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	userID := c.GetString(middleware.UserIDKey)
	orderID := c.Param("id")

	// Fast path: the purchase-event consumer keeps recent orders in
	// redis; cache errors just fall through to MySQL.
	if msg, ok, err := h.cache.GetOrder(ctx, orderID); err == nil && ok && msg.UserID == userID {
		c.JSON(http.StatusOK, gin.H{"order": orderResp{
			ID:         msg.OrderID,
			CartID:     msg.CartID,
			TotalPrice: msg.TotalPrice,
			Status:     msg.Status,
			CreatedAt:  msg.CreatedAt,
		}})
		return
	}

	order, err := h.orders.GetByID(ctx, userID, orderID)
	if errors.Is(err, usecase.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order with that ID does not exist"})
		return
	}
	if err != nil {
		logging.From(c).Error("get order failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderResp(*order)})
}

type orderResp struct {
	ID         string `json:"id"`
	CartID     string `json:"cartId"`
	TotalPrice string `json:"totalPrice"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

func toOrderResp(o entity.Order) orderResp {
	return orderResp{
		ID:         o.ID,
		CartID:     o.CartID,
		TotalPrice: o.TotalPrice.StringFixed(2),
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toOrderResps(orders []entity.Order) []orderResp {
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return out
}
