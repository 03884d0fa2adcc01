package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http/middleware"
	"github.com/lguillozl/ecommerce-api/internal/entity"
	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	products usecase.ProductRepo
	catalog  usecase.CatalogRepo
}

func NewProductHandler(products usecase.ProductRepo, catalog usecase.CatalogRepo) *ProductHandler {
	return &ProductHandler{products: products, catalog: catalog}
}

type createProductReq struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  string          `json:"categoryId" binding:"required"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &entity.Product{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      entity.ProductActive,
		CategoryID:  req.CategoryID,
		UserID:      c.GetString(middleware.UserIDKey),
	}
	if err := product.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.catalog.CreateProduct(ctx, product); err != nil {
		logging.From(c).Error("create product failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "product": toProductResp(product)})
}

func (h *ProductHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	products, err := h.catalog.ListActive(ctx)
	if err != nil {
		logging.From(c).Error("list products failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	out := make([]gin.H, 0, len(products))
	for i := range products {
		out = append(out, toProductResp(&products[i]))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(out), "products": out})
}

func (h *ProductHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	product, err := h.products.GetActive(ctx, c.Param("id"))
	if errors.Is(err, usecase.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		logging.From(c).Error("get product failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "product": toProductResp(product)})
}

type updateProductParams struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	product, err := h.products.GetActive(ctx, c.Param("id"))
	if errors.Is(err, usecase.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		logging.From(c).Error("get product failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if err := product.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.UpdateProduct(ctx, product); err != nil {
		logging.From(c).Error("update product failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product successfully updated", "product": toProductResp(product)})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.catalog.RemoveProduct(ctx, c.Param("id"))
	if errors.Is(err, usecase.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		logging.From(c).Error("delete product failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product successfully deleted"})
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		logging.From(c).Error("list categories failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "categories": categories})
}

type createCategoryReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	category := &entity.Category{ID: uuid.NewString(), Name: req.Name}
	if err := h.catalog.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, usecase.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category already exists"})
			return
		}
		logging.From(c).Error("create category failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "category": category})
}

func toProductResp(p *entity.Product) gin.H {
	return gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"price":       p.Price,
		"quantity":    p.Quantity,
		"status":      p.Status,
		"categoryId":  p.CategoryID,
		"userId":      p.UserID,
	}
}
