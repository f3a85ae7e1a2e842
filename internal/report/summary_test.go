package report

import (
	"testing"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/forecast"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySummaries(t *testing.T) {
	agg := TypeAggregates{
		LastMonthSales: map[string]int{"gi": 30, "rg": 12, "te": 5},
		Sales3M:        map[string]int{"gi": 90, "rg": 30, "te": 9},
		Sales12M:       map[string]int{"gi": 360, "rg": 120, "te": 24},
		CurrentStock:   map[string]int{"gi": 200, "rg": 80, "te": 40},
		OnOrder:        map[string]int{"gi": 50, "te": 10},
	}
	products := []ProductBreakdownRow{
		{ProductCode: "GI-002", ProductName: "Comp Gi", TypeCode: "gi", LastMonthSales: 10, AvgSales: 9, CurrentStock: 60},
		{ProductCode: "GI-001", ProductName: "Classic Gi", TypeCode: "gi", LastMonthSales: 20, AvgSales: 21, CurrentStock: 140},
		{ProductCode: "GI-003", ProductName: "Retired Gi", TypeCode: "gi", LastMonthSales: 0, AvgSales: 0.3, CurrentStock: 12},
		{ProductCode: "TE-001", ProductName: "Logo Tee", TypeCode: "te", LastMonthSales: 5, AvgSales: 3, CurrentStock: 40},
	}

	summaries := CategorySummaries(agg, products)

	// Five named categories plus others, in fixed order.
	require.Len(t, summaries, 6)
	assert.Equal(t, "gi", summaries[0].TypeCode)
	assert.Equal(t, "bt", summaries[4].TypeCode)
	assert.Equal(t, OthersCategory, summaries[5].TypeCode)

	gi := summaries[0]
	assert.Equal(t, 200, gi.Stock)
	assert.Equal(t, 30, gi.LastMonthSales)
	assert.InDelta(t, 30.0, gi.AvgSales12, 1e-9)
	assert.InDelta(t, 30.0, gi.AvgSales3, 1e-9)
	assert.Equal(t, 50, gi.ItemsOnOrder)

	// Breakdown sorted by last-month sales, zero-sales product dropped.
	require.Len(t, gi.Products, 2)
	assert.Equal(t, "GI-001", gi.Products[0].ProductCode)
	assert.Equal(t, "GI-002", gi.Products[1].ProductCode)

	// Tees are not an allowed category: they land in others.
	others := summaries[5]
	assert.Equal(t, 40, others.Stock)
	assert.Equal(t, 5, others.LastMonthSales)
	assert.Equal(t, 10, others.ItemsOnOrder)
	require.Len(t, others.Products, 1)
	assert.Equal(t, "TE-001", others.Products[0].ProductCode)

	// Allowed category with no data still gets an empty card.
	assert.Zero(t, summaries[4].Stock)
	assert.Empty(t, summaries[4].Products)
}

func TestRevenueByBucket(t *testing.T) {
	retail := decimal.NewFromInt(50)
	sales := []PricedSale{
		{Sale: domain.Sale{SoldQuantity: 2, SoldValue: decimal.NewFromInt(100)}, RetailPrice: &retail},
		{Sale: domain.Sale{SoldQuantity: 1, SoldValue: decimal.NewFromInt(45)}, RetailPrice: &retail},
		{Sale: domain.Sale{SoldQuantity: 3, SoldValue: decimal.Zero}, RetailPrice: &retail},
		{Sale: domain.Sale{SoldQuantity: 0, SoldValue: decimal.NewFromInt(50)}, RetailPrice: &retail}, // refund line, skipped
	}

	buckets := RevenueByBucket(sales)

	require.Len(t, buckets, len(forecast.PriceBuckets))
	byName := make(map[forecast.PriceBucket]BucketRevenue)
	for _, b := range buckets {
		byName[b.Bucket] = b
	}

	assert.Equal(t, 2, byName[forecast.BucketFullPrice].Units)
	assert.True(t, byName[forecast.BucketFullPrice].Revenue.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, 1, byName[forecast.BucketDiscount].Units)
	assert.True(t, byName[forecast.BucketDiscount].Revenue.Equal(decimal.NewFromInt(45)))

	assert.Equal(t, 3, byName[forecast.BucketGifted].Units)
	assert.True(t, byName[forecast.BucketGifted].Revenue.IsZero())

	assert.Zero(t, byName[forecast.BucketWholesale].Units)
}
