package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const OrderPurchased OrderStatus = StatusPurchased

// Order is the record created exactly once when a cart is purchased.
// TotalPrice is fixed at the prices read when the purchase transaction
// took its snapshot.
type Order struct {
	ID         string
	UserID     string
	CartID     string
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
}
