package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusPurchased is the single terminal literal shared by carts, cart
// lines and orders.
const StatusPurchased = "purchased"

type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartPurchased CartStatus = StatusPurchased
)

type LineStatus string

const (
	LineActive    LineStatus = "active"
	LineRemoved   LineStatus = "removed"
	LinePurchased LineStatus = StatusPurchased
)

// Cart is a user's single in-progress basket. A user has at most one
// cart with CartActive at any time; purchased carts are kept as history.
type Cart struct {
	ID        string
	UserID    string
	Status    CartStatus
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is one product entry inside a cart. There is one row per
// (cart, product) pair; add/remove flips Status between active and
// removed instead of inserting duplicates. LinePurchased is terminal
// and freezes Quantity and UnitPrice for the historical record.
type CartLine struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	Status    LineStatus
	UnitPrice decimal.NullDecimal
	Product   Summary
}

// ActiveLines filters the cart down to the lines that will be priced
// and purchased at checkout.
func (c *Cart) ActiveLines() []CartLine {
	out := make([]CartLine, 0, len(c.Lines))
	for _, ln := range c.Lines {
		if ln.Status == LineActive {
			out = append(out, ln)
		}
	}
	return out
}

// TotalPrice sums price*quantity over the given lines at their joined
// product prices.
func TotalPrice(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Product.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}
