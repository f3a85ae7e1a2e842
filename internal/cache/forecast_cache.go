package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/forecast"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix     = "forecast"
	forecastScanBatchSize = 100

	kindProjection = "proj"
	kindSafeStock  = "safe"
	kindHealth     = "health"
)

// ForecastCache stores computed projections, safe-stock summaries and
// health scores per product. Writes to a product's snapshots, sales or
// order items must invalidate that product's entries.
type ForecastCache interface {
	GetProjection(ctx context.Context, productCode string) (*forecast.ProductProjection, bool, error)
	SetProjection(ctx context.Context, productCode string, proj *forecast.ProductProjection) error
	GetSafeStock(ctx context.Context, productCode string) (*forecast.SafeStockSummary, bool, error)
	SetSafeStock(ctx context.Context, productCode string, summary *forecast.SafeStockSummary) error
	GetHealth(ctx context.Context, productCode string) (*forecast.ProductHealth, bool, error)
	SetHealth(ctx context.Context, productCode string, health *forecast.ProductHealth) error
	InvalidateProduct(ctx context.Context, productCode string) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func forecastKey(kind, productCode string) string {
	return fmt.Sprintf("%s:%s:%s", forecastKeyPrefix, kind, productCode)
}

func (c *redisForecastCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode forecast cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *redisForecastCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode forecast cache entry %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) GetProjection(ctx context.Context, productCode string) (*forecast.ProductProjection, bool, error) {
	var proj forecast.ProductProjection
	found, err := c.get(ctx, forecastKey(kindProjection, productCode), &proj)
	if err != nil || !found {
		return nil, false, err
	}
	return &proj, true, nil
}

func (c *redisForecastCache) SetProjection(ctx context.Context, productCode string, proj *forecast.ProductProjection) error {
	return c.set(ctx, forecastKey(kindProjection, productCode), proj)
}

func (c *redisForecastCache) GetSafeStock(ctx context.Context, productCode string) (*forecast.SafeStockSummary, bool, error) {
	var summary forecast.SafeStockSummary
	found, err := c.get(ctx, forecastKey(kindSafeStock, productCode), &summary)
	if err != nil || !found {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisForecastCache) SetSafeStock(ctx context.Context, productCode string, summary *forecast.SafeStockSummary) error {
	return c.set(ctx, forecastKey(kindSafeStock, productCode), summary)
}

func (c *redisForecastCache) GetHealth(ctx context.Context, productCode string) (*forecast.ProductHealth, bool, error) {
	var health forecast.ProductHealth
	found, err := c.get(ctx, forecastKey(kindHealth, productCode), &health)
	if err != nil || !found {
		return nil, false, err
	}
	return &health, true, nil
}

func (c *redisForecastCache) SetHealth(ctx context.Context, productCode string, health *forecast.ProductHealth) error {
	return c.set(ctx, forecastKey(kindHealth, productCode), health)
}

func (c *redisForecastCache) InvalidateProduct(ctx context.Context, productCode string) error {
	keys := []string{
		forecastKey(kindProjection, productCode),
		forecastKey(kindSafeStock, productCode),
		forecastKey(kindHealth, productCode),
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix+":", forecastScanBatchSize)
}

func (n *noopForecastCache) GetProjection(ctx context.Context, productCode string) (*forecast.ProductProjection, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetProjection(ctx context.Context, productCode string, proj *forecast.ProductProjection) error {
	return nil
}

func (n *noopForecastCache) GetSafeStock(ctx context.Context, productCode string) (*forecast.SafeStockSummary, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSafeStock(ctx context.Context, productCode string, summary *forecast.SafeStockSummary) error {
	return nil
}

func (n *noopForecastCache) GetHealth(ctx context.Context, productCode string) (*forecast.ProductHealth, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetHealth(ctx context.Context, productCode string, health *forecast.ProductHealth) error {
	return nil
}

func (n *noopForecastCache) InvalidateProduct(ctx context.Context, productCode string) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}
