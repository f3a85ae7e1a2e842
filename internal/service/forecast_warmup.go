// internal/service/forecast_warmup.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/forecast"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/rs/zerolog/log"
)

// WarmupResult summarizes a cache warm-up run.
type WarmupResult struct {
	Products int           `json:"products"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// WarmCache precomputes projections, safe stock levels and health
// scores for every product matching the filter and stores them in the
// cache. Products are processed by a pool of workers; one product
// failing does not stop the rest.
func (s *ForecastService) WarmCache(ctx context.Context, filter domain.ProductFilter, workerCount int) (WarmupResult, error) {
	start := time.Now()

	if err := filter.Validate(); err != nil {
		return WarmupResult{}, err
	}
	if workerCount < 1 {
		workerCount = 1
	}

	products, err := s.histories.ProductHistories(ctx, filter)
	if err != nil {
		return WarmupResult{}, err
	}

	now := time.Now().UTC()
	base, err := s.storeBaseline(ctx, now)
	if err != nil {
		return WarmupResult{}, err
	}

	jobChan := make(chan repository.ProductData, len(products))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	// Start workers
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pd := range jobChan {
				if err := s.warmProduct(ctx, pd, base, now); err != nil {
					log.Warn().Err(err).Str("product_code", pd.Product.ProductCode).Msg("forecast: warmup failed for product")
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	// Enqueue jobs
	for _, pd := range products {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return WarmupResult{}, ctx.Err()
		case jobChan <- pd:
		}
	}
	close(jobChan)
	wg.Wait()

	result := WarmupResult{
		Products: len(products),
		Failed:   failed,
		Duration: time.Since(start),
	}
	log.Info().
		Int("products", result.Products).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("forecast: cache warmup completed")
	return result, nil
}

// warmProduct computes and caches all three forecasts for one product.
func (s *ForecastService) warmProduct(ctx context.Context, pd repository.ProductData, base storeBaseline, now time.Time) error {
	histories := toHistories(pd.Variants)
	code := pd.Product.ProductCode

	inputs := make([]forecast.ProjectionInput, 0, len(histories))
	for _, h := range histories {
		inputs = append(inputs, forecast.ProjectionInput{
			History: h,
			Speed:   forecast.EstimateVelocity(h, s.velocityOptions(now)),
		})
	}
	proj := forecast.ProjectStock(inputs, forecast.ProjectionOptions{
		HorizonMonths: s.cfg.HorizonMonths,
		AsOf:          now,
	})
	if err := s.cache.SetProjection(ctx, code, &proj); err != nil {
		return err
	}

	safe := forecast.SafeStock(histories, now)
	if err := s.cache.SetSafeStock(ctx, code, &safe); err != nil {
		return err
	}

	return s.cache.SetHealth(ctx, code, s.buildHealth(pd, base, now))
}
