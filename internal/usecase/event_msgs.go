package usecase

// CartPurchasedMsg is published through the outbox after a successful
// checkout.
type CartPurchasedMsg struct {
	OrderID    string `json:"orderId"`
	UserID     string `json:"userId"`
	CartID     string `json:"cartId"`
	TotalPrice string `json:"totalPrice"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"` // RFC 3339
}

// StockAdjustedMsg arrives on Kafka from the warehouse system; Delta is
// signed (restocks positive, corrections negative).
type StockAdjustedMsg struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason,omitempty"`
}
