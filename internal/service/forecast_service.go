// internal/service/forecast_service.go
package service

import (
	"context"
	"time"

	"github.com/hoshigear/inventory-api/internal/cache"
	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/forecast"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const baselineWindowMonths = 12

// ForecastService runs the forecasting engine over repository data and
// caches the per-product results.
type ForecastService struct {
	histories repository.HistoryRepository
	cache     cache.ForecastCache
	cfg       config.ForecastConfig
	scoring   forecast.ScoringConfig
}

func NewForecastService(histories repository.HistoryRepository, cacheImpl cache.ForecastCache, cfg config.ForecastConfig) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		histories: histories,
		cache:     cacheImpl,
		cfg:       cfg,
		scoring:   forecast.DefaultScoringConfig(),
	}
}

// Projection returns the month-by-month stock projection for every
// variant of a product.
func (s *ForecastService) Projection(ctx context.Context, productCode string) (*forecast.ProductProjection, error) {
	if proj, ok, err := s.cache.GetProjection(ctx, productCode); err == nil && ok {
		return proj, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache get projection failed")
	}

	data, err := s.histories.ProductHistory(ctx, productCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inputs := make([]forecast.ProjectionInput, 0, len(data.Variants))
	for _, h := range toHistories(data.Variants) {
		inputs = append(inputs, forecast.ProjectionInput{
			History: h,
			Speed:   forecast.EstimateVelocity(h, s.velocityOptions(now)),
		})
	}

	proj := forecast.ProjectStock(inputs, forecast.ProjectionOptions{
		HorizonMonths: s.cfg.HorizonMonths,
		AsOf:          now,
	})

	if err := s.cache.SetProjection(ctx, productCode, &proj); err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache set projection failed")
	}
	return &proj, nil
}

// SafeStock returns the per-size stock floors for a product.
func (s *ForecastService) SafeStock(ctx context.Context, productCode string) (*forecast.SafeStockSummary, error) {
	if summary, ok, err := s.cache.GetSafeStock(ctx, productCode); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache get safe stock failed")
	}

	data, err := s.histories.ProductHistory(ctx, productCode)
	if err != nil {
		return nil, err
	}

	summary := forecast.SafeStock(toHistories(data.Variants), time.Now().UTC())

	if err := s.cache.SetSafeStock(ctx, productCode, &summary); err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache set safe stock failed")
	}
	return &summary, nil
}

// Health scores one product's restock confidence against the
// store-wide baseline.
func (s *ForecastService) Health(ctx context.Context, productCode string) (*forecast.ProductHealth, error) {
	if health, ok, err := s.cache.GetHealth(ctx, productCode); err == nil && ok {
		return health, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache get health failed")
	}

	data, err := s.histories.ProductHistory(ctx, productCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	base, err := s.storeBaseline(ctx, now)
	if err != nil {
		return nil, err
	}

	health := s.buildHealth(*data, base, now)

	if err := s.cache.SetHealth(ctx, productCode, health); err != nil {
		log.Warn().Err(err).Str("product_code", productCode).Msg("forecast: cache set health failed")
	}
	return health, nil
}

// HealthAll scores every active product. Results are not cached as a
// set; individual entries are.
func (s *ForecastService) HealthAll(ctx context.Context, filter domain.ProductFilter) ([]forecast.ProductHealth, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	products, err := s.histories.ProductHistories(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	base, err := s.storeBaseline(ctx, now)
	if err != nil {
		return nil, err
	}

	out := make([]forecast.ProductHealth, 0, len(products))
	for _, pd := range products {
		health := s.buildHealth(pd, base, now)
		out = append(out, *health)
		if err := s.cache.SetHealth(ctx, pd.Product.ProductCode, health); err != nil {
			log.Warn().Err(err).Str("product_code", pd.Product.ProductCode).Msg("forecast: cache set health failed")
		}
	}
	return out, nil
}

// RestockAlerts flags products whose variants are running out.
// Decommissioned and no-restock products are never flagged.
func (s *ForecastService) RestockAlerts(ctx context.Context, filter domain.ProductFilter) ([]forecast.ProductAlert, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.IncludeDecommissioned = false

	products, err := s.histories.ProductHistories(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stocks := make([]forecast.ProductStock, 0, len(products))
	for _, pd := range products {
		if pd.Product.NoRestock {
			continue
		}
		ps := forecast.ProductStock{Product: pd.Product}
		for _, h := range toHistories(pd.Variants) {
			stock, _ := h.StockOn(now)
			ps.Variants = append(ps.Variants, forecast.VariantStock{
				VariantCode:  h.Variant.VariantCode,
				Size:         h.Variant.Size,
				CurrentStock: stock,
				Speed:        forecast.EstimateVelocity(h, s.velocityOptions(now)),
			})
		}
		stocks = append(stocks, ps)
	}

	alerts := forecast.RestockAlerts(stocks)
	log.Info().Int("products", len(stocks)).Int("alerts", len(alerts)).Msg("forecast: restock alerts computed")
	return alerts, nil
}

// InvalidateProduct drops a product's cached forecasts. Call it after
// any write to the product's snapshots, sales or order items.
func (s *ForecastService) InvalidateProduct(ctx context.Context, productCode string) error {
	return s.cache.InvalidateProduct(ctx, productCode)
}

func (s *ForecastService) velocityOptions(now time.Time) forecast.VelocityOptions {
	return forecast.VelocityOptions{
		Weeks:         s.cfg.VelocityWeeks,
		FallbackWeeks: s.cfg.FallbackWeeks,
		AsOf:          now,
	}
}

func toHistories(variants []repository.VariantData) []*forecast.VariantHistory {
	out := make([]*forecast.VariantHistory, 0, len(variants))
	for _, vd := range variants {
		out = append(out, forecast.NewVariantHistory(vd.Variant, vd.Snapshots, vd.Sales, vd.OrderItems))
	}
	return out
}

// storeBaseline is the store-wide average the scorer compares a product
// against.
type storeBaseline struct {
	AvgSpeed       float64
	AvgReturnRate  float64
	AvgDiscountPct float64
	AvgMarginPct   float64
}

func (s *ForecastService) storeBaseline(ctx context.Context, now time.Time) (storeBaseline, error) {
	agg, err := s.histories.StoreAggregate(ctx, now.AddDate(0, -baselineWindowMonths, 0), now)
	if err != nil {
		return storeBaseline{}, err
	}

	base := storeBaseline{}
	if agg.TotalSold > 0 && agg.VariantCount > 0 {
		base.AvgSpeed = float64(agg.TotalSold) / float64(agg.VariantCount) / float64(baselineWindowMonths)
		base.AvgReturnRate = float64(agg.TotalReturned) / float64(agg.TotalSold)
	}
	if agg.TotalRetail.IsPositive() {
		ratio, _ := agg.TotalValue.Div(agg.TotalRetail).Float64()
		base.AvgDiscountPct = (1 - ratio) * 100
	}
	if agg.TotalCost.IsPositive() && agg.TotalValue.IsPositive() {
		margin, _ := agg.TotalValue.Sub(agg.TotalCost).Div(agg.TotalValue).Float64()
		base.AvgMarginPct = margin * 100
	}
	return base, nil
}

// buildHealth materializes one product's metrics over the baseline
// window and scores them.
func (s *ForecastService) buildHealth(pd repository.ProductData, base storeBaseline, now time.Time) *forecast.ProductHealth {
	from := now.AddDate(0, -baselineWindowMonths, 0)
	histories := toHistories(pd.Variants)

	totalSold := 0
	totalReturned := 0
	totalStock := 0
	totalSpeed := 0.0
	giftedUnits := 0
	soldValue := decimal.Zero
	costValue := decimal.Zero
	costUnits := 0

	for i, h := range histories {
		totalSold += h.SoldBetween(from, now)
		totalReturned += h.ReturnedBetween(from, now)
		stock, _ := h.StockOn(now)
		totalStock += stock
		totalSpeed += forecast.EstimateVelocity(h, s.velocityOptions(now))

		for _, sale := range h.Sales {
			if sale.Date.Before(from) || sale.Date.After(now) {
				continue
			}
			soldValue = soldValue.Add(sale.SoldValue)
			if bucket, ok := forecast.ClassifyPriceBucket(sale, pd.Product.RetailPrice); ok && bucket == forecast.BucketGifted {
				giftedUnits += sale.SoldQuantity
			}
		}
		for _, oi := range pd.Variants[i].OrderItems {
			if !oi.Delivered() {
				continue
			}
			costValue = costValue.Add(oi.ItemCostPrice.Mul(decimal.NewFromInt(int64(oi.DeliveredQuantity()))))
			costUnits += oi.DeliveredQuantity()
		}
	}

	metrics := forecast.HealthMetrics{
		Speed:          0,
		AvgSpeed:       base.AvgSpeed,
		AvgReturnRate:  base.AvgReturnRate,
		AvgDiscountPct: base.AvgDiscountPct,
		AvgMarginPct:   base.AvgMarginPct,
		TotalSold:      totalSold,
		IsCore:         isCoreProduct(pd.Product),
		RestockMonths:  pd.Product.RestockMonths,
	}
	if metrics.RestockMonths <= 0 {
		metrics.RestockMonths = s.cfg.RestockDefault
	}
	if len(histories) > 0 {
		metrics.Speed = totalSpeed / float64(len(histories))
	}

	if totalSpeed > 0 {
		months := float64(totalStock) / totalSpeed
		metrics.MonthsToSellOut = &months
	}
	if totalSold > 0 {
		rate := float64(totalReturned) / float64(totalSold)
		metrics.ReturnRate = &rate

		gift := float64(giftedUnits) / float64(totalSold)
		metrics.GiftRate = &gift

		if pd.Product.RetailPrice != nil && pd.Product.RetailPrice.IsPositive() {
			retailValue := pd.Product.RetailPrice.Mul(decimal.NewFromInt(int64(totalSold)))
			ratio, _ := soldValue.Div(retailValue).Float64()
			discount := (1 - ratio) * 100
			metrics.DiscountPct = &discount
		}
		if costUnits > 0 && soldValue.IsPositive() {
			avgUnitPrice := soldValue.Div(decimal.NewFromInt(int64(totalSold)))
			avgUnitCost := costValue.Div(decimal.NewFromInt(int64(costUnits)))
			margin, _ := avgUnitPrice.Sub(avgUnitCost).Div(avgUnitPrice).Float64()
			marginPct := margin * 100
			metrics.MarginPct = &marginPct
		}
	}

	return &forecast.ProductHealth{
		ProductCode: pd.Product.ProductCode,
		ProductName: pd.Product.ProductName,
		Metrics:     metrics,
		Result:      forecast.ConfidenceScore(metrics, s.scoring),
	}
}

// isCoreProduct reports whether the product belongs to the always-
// stocked assortment, marked by membership in the "core" group.
func isCoreProduct(p domain.Product) bool {
	for _, g := range p.Groups {
		if g == "core" {
			return true
		}
	}
	return false
}
