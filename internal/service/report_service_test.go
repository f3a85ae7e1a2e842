package service

import (
	"context"
	"testing"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	aggregateCalls int
}

func (f *fakeReportRepo) TypeAggregates(ctx context.Context, asOf time.Time) (report.TypeAggregates, error) {
	f.aggregateCalls++
	return report.TypeAggregates{
		LastMonthSales: map[string]int{"gi": 40, "te": 5},
		Sales3M:        map[string]int{"gi": 90, "te": 12},
		Sales12M:       map[string]int{"gi": 360, "te": 48},
		CurrentStock:   map[string]int{"gi": 200, "te": 30},
		OnOrder:        map[string]int{"gi": 50},
	}, nil
}

func (f *fakeReportRepo) ProductBreakdown(ctx context.Context, asOf time.Time) ([]report.ProductBreakdownRow, error) {
	return []report.ProductBreakdownRow{
		{ProductCode: "HG-001", ProductName: "Competition Gi", TypeCode: "gi", LastMonthSales: 25, AvgSales: 20, CurrentStock: 120},
		{ProductCode: "HG-002", ProductName: "Classic Gi", TypeCode: "gi", LastMonthSales: 15, AvgSales: 18, CurrentStock: 80},
	}, nil
}

func (f *fakeReportRepo) MonthlySalesBySize(ctx context.Context, category string, months int, asOf time.Time) ([]map[string]int, error) {
	out := make([]map[string]int, months)
	for i := range out {
		out[i] = map[string]int{"S": 4, "M": 8, "L": 6}
	}
	return out, nil
}

func (f *fakeReportRepo) EndingStockBySize(ctx context.Context, category string) (map[string]int, error) {
	return map[string]int{"S": 10, "M": 5, "L": 8}, nil
}

func (f *fakeReportRepo) PricedSales(ctx context.Context, from, to time.Time) ([]report.PricedSale, error) {
	return nil, nil
}

func (f *fakeReportRepo) SalesWindow(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	return []domain.Sale{
		{ID: 1, OrderNumber: "ON-1", VariantID: 1, SoldQuantity: 2, SoldValue: decimal.NewFromInt(100), ReferrerID: ptrInt64(7)},
	}, nil
}

type fakeCatalogRepo struct {
	reassigned int64
}

func (f *fakeCatalogRepo) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetProduct(ctx context.Context, productCode string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func (f *fakeCatalogRepo) ListVariants(ctx context.Context, productCode string) ([]domain.Variant, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) ListReferrers(ctx context.Context) ([]domain.Referrer, error) {
	return []domain.Referrer{{ID: 7, Name: "Coach Ana"}}, nil
}

func (f *fakeCatalogRepo) ReassignReferrer(ctx context.Context, saleIDs []int64, referrerID int64) (int64, error) {
	f.reassigned += int64(len(saleIDs))
	return int64(len(saleIDs)), nil
}

// memReportCache is an in-memory ReportCache tracking invalidations.
type memReportCache struct {
	summaries     []report.CategorySummary
	sizeMixes     map[string][]report.SizeMixRow
	invalidations int
}

func newMemReportCache() *memReportCache {
	return &memReportCache{sizeMixes: make(map[string][]report.SizeMixRow)}
}

func (m *memReportCache) GetSummaries(ctx context.Context) ([]report.CategorySummary, bool, error) {
	return m.summaries, m.summaries != nil, nil
}

func (m *memReportCache) SetSummaries(ctx context.Context, summaries []report.CategorySummary) error {
	m.summaries = summaries
	return nil
}

func (m *memReportCache) GetSizeMix(ctx context.Context, category string) ([]report.SizeMixRow, bool, error) {
	rows, ok := m.sizeMixes[category]
	return rows, ok, nil
}

func (m *memReportCache) SetSizeMix(ctx context.Context, category string, rows []report.SizeMixRow) error {
	m.sizeMixes[category] = rows
	return nil
}

func (m *memReportCache) InvalidateAll(ctx context.Context) error {
	m.summaries = nil
	m.sizeMixes = make(map[string][]report.SizeMixRow)
	m.invalidations++
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

func TestReportServiceDashboard(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, &fakeCatalogRepo{}, newMemReportCache(), testForecastConfig())

	summaries, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	// Five fixed category cards plus "others"
	require.Len(t, summaries, 6)
	assert.Equal(t, "gi", summaries[0].TypeCode)
	assert.Equal(t, 200, summaries[0].Stock)
	require.Len(t, summaries[0].Products, 2)
	assert.Equal(t, "HG-001", summaries[0].Products[0].ProductCode)

	// "te" is not a card of its own, it folds into others
	others := summaries[5]
	assert.Equal(t, report.OthersCategory, others.TypeCode)
	assert.Equal(t, 5, others.LastMonthSales)
}

func TestReportServiceDashboardUsesCache(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, &fakeCatalogRepo{}, newMemReportCache(), testForecastConfig())

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.aggregateCalls, "second call must be served from cache")
}

func TestReportServiceSizeMix(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, &fakeCatalogRepo{}, newMemReportCache(), testForecastConfig())

	rows, err := svc.SizeMix(context.Background(), "gi")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	totalPct := 0.0
	for _, row := range rows {
		totalPct += row.IdealPct
	}
	assert.InDelta(t, 100.0, totalPct, 1.0)
}

func TestReportServiceSizeMixRejectsUnknownCategory(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, &fakeCatalogRepo{}, newMemReportCache(), testForecastConfig())

	_, err := svc.SizeMix(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	// "" and "all" both mean the whole store
	_, err = svc.SizeMix(context.Background(), "")
	assert.NoError(t, err)
	_, err = svc.SizeMix(context.Background(), "all")
	assert.NoError(t, err)
}

func TestReportServiceReferrers(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, &fakeCatalogRepo{}, newMemReportCache(), testForecastConfig())

	now := time.Now().UTC()
	summaries, err := svc.Referrers(context.Background(), now.AddDate(0, -1, 0), now)
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "Coach Ana", summaries[0].ReferrerName)
	assert.Equal(t, 2, summaries[0].Units)
}

func TestReportServiceReassignReferrerInvalidatesCache(t *testing.T) {
	memCache := newMemReportCache()
	catalog := &fakeCatalogRepo{}
	svc := NewReportService(&fakeReportRepo{}, catalog, memCache, testForecastConfig())

	// Prime the cache
	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	updated, err := svc.ReassignReferrer(context.Background(), []int64{1, 2}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.Equal(t, 1, memCache.invalidations)

	// Nothing updated, nothing to invalidate
	_, err = svc.ReassignReferrer(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, memCache.invalidations)
}
