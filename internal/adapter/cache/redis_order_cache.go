package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

// RedisOrderCache keeps a short-lived order-summary mirror, warmed by
// the purchase-event consumer and read by order lookups before MySQL.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

func (c *RedisOrderCache) SetOrder(ctx context.Context, msg usecase.CartPurchasedMsg) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "order:summary:"+msg.OrderID, raw, c.ttl).Err()
}

func (c *RedisOrderCache) GetOrder(ctx context.Context, orderID string) (usecase.CartPurchasedMsg, bool, error) {
	raw, err := c.rdb.Get(ctx, "order:summary:"+orderID).Bytes()
	if err == redis.Nil {
		return usecase.CartPurchasedMsg{}, false, nil
	}
	if err != nil {
		return usecase.CartPurchasedMsg{}, false, err
	}
	var msg usecase.CartPurchasedMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return usecase.CartPurchasedMsg{}, false, err
	}
	return msg, true, nil
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)
