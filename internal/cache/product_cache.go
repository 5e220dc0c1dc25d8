package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/models"
)

// Derived per-product data only changes when a sync run lands, so the
// TTL is a backstop; sync runs invalidate the keys explicitly.
const derivedTTL = time.Hour

// ProductCache caches derived per-product amounts and prices.
type ProductCache struct {
	redis *RedisClient
}

// NewProductCache creates a new ProductCache.
func NewProductCache(redis *RedisClient) *ProductCache {
	return &ProductCache{redis: redis}
}

func amountsKey(refKey string) string {
	return fmt.Sprintf("product:amounts:%s", refKey)
}

func pricesKey(refKey string) string {
	return fmt.Sprintf("product:prices:%s", refKey)
}

// GetAmounts returns cached amounts for a product, or (nil, false) on a miss.
func (c *ProductCache) GetAmounts(ctx context.Context, refKey string) ([]models.ProductAmount, bool) {
	raw, err := c.redis.Get(ctx, amountsKey(refKey))
	if err != nil {
		return nil, false
	}
	var amounts []models.ProductAmount
	if err := json.Unmarshal([]byte(raw), &amounts); err != nil {
		return nil, false
	}
	return amounts, true
}

// SetAmounts stores amounts for a product.
func (c *ProductCache) SetAmounts(ctx context.Context, refKey string, amounts []models.ProductAmount) error {
	raw, err := json.Marshal(amounts)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, amountsKey(refKey), string(raw), derivedTTL)
}

// GetPrices returns cached prices for a product, or (nil, false) on a miss.
func (c *ProductCache) GetPrices(ctx context.Context, refKey string) ([]models.ProductPrice, bool) {
	raw, err := c.redis.Get(ctx, pricesKey(refKey))
	if err != nil {
		return nil, false
	}
	var prices []models.ProductPrice
	if err := json.Unmarshal([]byte(raw), &prices); err != nil {
		return nil, false
	}
	return prices, true
}

// SetPrices stores prices for a product.
func (c *ProductCache) SetPrices(ctx context.Context, refKey string, prices []models.ProductPrice) error {
	raw, err := json.Marshal(prices)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, pricesKey(refKey), string(raw), derivedTTL)
}

// Invalidate drops all derived per-product keys. Called after sync runs
// that touch products, movements or price changes.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if err := c.redis.DeleteByPattern(ctx, "product:amounts:*"); err != nil {
		return err
	}
	return c.redis.DeleteByPattern(ctx, "product:prices:*")
}
