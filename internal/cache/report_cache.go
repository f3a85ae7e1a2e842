package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/report"
	"github.com/redis/go-redis/v9"
)

const (
	reportSummaryKeyPrefix = "report:summary"
	reportSizeMixKeyPrefix = "report:sizemix"
	reportScanBatchSize    = 100
)

// ReportCache stores the dashboard aggregates. These are store-wide, so
// any inventory or sales write invalidates everything.
type ReportCache interface {
	GetSummaries(ctx context.Context) ([]report.CategorySummary, bool, error)
	SetSummaries(ctx context.Context, summaries []report.CategorySummary) error
	GetSizeMix(ctx context.Context, category string) ([]report.SizeMixRow, bool, error)
	SetSizeMix(ctx context.Context, category string, rows []report.SizeMixRow) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func sizeMixKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:%s", reportSizeMixKeyPrefix, category)
}

func (c *redisReportCache) GetSummaries(ctx context.Context) ([]report.CategorySummary, bool, error) {
	payload, err := c.client.Get(ctx, reportSummaryKeyPrefix).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []report.CategorySummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode report summary cache: %w", err)
	}
	return summaries, true, nil
}

func (c *redisReportCache) SetSummaries(ctx context.Context, summaries []report.CategorySummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode report summary cache: %w", err)
	}

	if err := c.client.Set(ctx, reportSummaryKeyPrefix, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) GetSizeMix(ctx context.Context, category string) ([]report.SizeMixRow, bool, error) {
	payload, err := c.client.Get(ctx, sizeMixKey(category)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []report.SizeMixRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode size mix cache: %w", err)
	}
	return rows, true, nil
}

func (c *redisReportCache) SetSizeMix(ctx context.Context, category string, rows []report.SizeMixRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode size mix cache: %w", err)
	}

	if err := c.client.Set(ctx, sizeMixKey(category), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, "report:", reportScanBatchSize)
}

func (n *noopReportCache) GetSummaries(ctx context.Context) ([]report.CategorySummary, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetSummaries(ctx context.Context, summaries []report.CategorySummary) error {
	return nil
}

func (n *noopReportCache) GetSizeMix(ctx context.Context, category string) ([]report.SizeMixRow, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetSizeMix(ctx context.Context, category string, rows []report.SizeMixRow) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}
