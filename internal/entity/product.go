package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductRemoved ProductStatus = "removed"
)

var (
	ErrInvalidPrice = errors.New("price must be greater than zero")
	ErrInvalidStock = errors.New("quantity cannot be negative")
)

type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Status      ProductStatus
	CategoryID  string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) Validate() error {
	if p.Price.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidPrice
	}
	if p.Quantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// Summary is the slice of a product that cart lines carry around:
// enough to render a cart and to price a checkout, nothing more.
type Summary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (p *Product) Summary() Summary {
	return Summary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
	}
}

type Category struct {
	ID     string
	Name   string
	Status string
}
