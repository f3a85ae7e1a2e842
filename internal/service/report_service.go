// internal/service/report_service.go
package service

import (
	"context"
	"time"

	"github.com/hoshigear/inventory-api/internal/cache"
	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/report"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReportService assembles the dashboard views from SQL aggregates.
type ReportService struct {
	reports repository.ReportRepository
	catalog repository.CatalogRepository
	cache   cache.ReportCache
	cfg     config.ForecastConfig
}

func NewReportService(reports repository.ReportRepository, catalog repository.CatalogRepository, cacheImpl cache.ReportCache, cfg config.ForecastConfig) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ReportService{reports: reports, catalog: catalog, cache: cacheImpl, cfg: cfg}
}

// Dashboard returns one summary card per product category.
func (s *ReportService) Dashboard(ctx context.Context) ([]report.CategorySummary, error) {
	if summaries, ok, err := s.cache.GetSummaries(ctx); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get summaries failed")
	}

	now := time.Now().UTC()
	agg, err := s.reports.TypeAggregates(ctx, now)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.reports.ProductBreakdown(ctx, now)
	if err != nil {
		return nil, err
	}

	summaries := report.CategorySummaries(agg, breakdown)

	if err := s.cache.SetSummaries(ctx, summaries); err != nil {
		log.Warn().Err(err).Msg("report: cache set summaries failed")
	}
	return summaries, nil
}

// SizeMix returns the recommended order mix per size, optionally
// narrowed to one product type.
func (s *ReportService) SizeMix(ctx context.Context, category string) ([]report.SizeMixRow, error) {
	if category != "" && category != "all" && !domain.ValidType(category) {
		return nil, domain.ErrInvalidFilter
	}

	if rows, ok, err := s.cache.GetSizeMix(ctx, category); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("report: cache get size mix failed")
	}

	now := time.Now().UTC()
	months := s.cfg.SizeMixMonths
	if months <= 0 {
		months = report.DefaultSizeMixMonths
	}

	monthly, err := s.reports.MonthlySalesBySize(ctx, category, months, now)
	if err != nil {
		return nil, err
	}
	stock, err := s.reports.EndingStockBySize(ctx, category)
	if err != nil {
		return nil, err
	}

	rows := report.SizeMix(monthly, stock, report.SizeMixOptions{Months: months})

	if err := s.cache.SetSizeMix(ctx, category, rows); err != nil {
		log.Warn().Err(err).Str("category", category).Msg("report: cache set size mix failed")
	}
	return rows, nil
}

// RevenueBuckets splits the window's revenue across the discount
// buckets.
func (s *ReportService) RevenueBuckets(ctx context.Context, from, to time.Time) ([]report.BucketRevenue, error) {
	sales, err := s.reports.PricedSales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.RevenueByBucket(sales), nil
}

// Referrers rolls up attributed sales per referrer over the window.
func (s *ReportService) Referrers(ctx context.Context, from, to time.Time) ([]report.ReferrerSummary, error) {
	referrers, err := s.catalog.ListReferrers(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.reports.SalesWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.ReferrerSummaries(referrers, sales), nil
}

// ReassignReferrer points the given sales at a referrer and flushes the
// report caches that aggregate over referrer data.
func (s *ReportService) ReassignReferrer(ctx context.Context, saleIDs []int64, referrerID int64) (int64, error) {
	updated, err := s.catalog.ReassignReferrer(ctx, saleIDs, referrerID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("report: cache invalidation after referrer reassignment failed")
		}
	}
	return updated, nil
}
