package forecast

import (
	"testing"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sale(date time.Time, qty int, value float64) domain.Sale {
	return domain.Sale{
		OrderNumber:  "T-1",
		Date:         date,
		SoldQuantity: qty,
		SoldValue:    decimal.NewFromFloat(value),
	}
}

func snapshot(date time.Time, count int) domain.InventorySnapshot {
	return domain.InventorySnapshot{Date: date, Count: count}
}

func history(snaps []domain.InventorySnapshot, sales []domain.Sale, items []domain.OrderItem) *VariantHistory {
	return NewVariantHistory(domain.Variant{VariantCode: "TST-001-M", Size: "M"}, snaps, sales, items)
}

func TestEstimateVelocityEmptyHistory(t *testing.T) {
	h := history(nil, nil, nil)

	detail := EstimateVelocityDetail(h, VelocityOptions{AsOf: day(2025, 6, 16)})

	assert.Zero(t, detail.Speed)
	assert.Zero(t, detail.TotalSold)
	assert.Zero(t, detail.Periods)
}

func TestEstimateVelocitySteadySeller(t *testing.T) {
	// Snapshot of 5 today, two units sold in each of the past six
	// weeks. Six counted weeks at 2/week.
	asOf := day(2025, 6, 16) // a Monday
	var sales []domain.Sale
	for i := 0; i < 6; i++ {
		sales = append(sales, sale(asOf.AddDate(0, 0, -7*i), 2, 100))
	}
	h := history([]domain.InventorySnapshot{snapshot(asOf, 5)}, sales, nil)

	detail := EstimateVelocityDetail(h, VelocityOptions{AsOf: asOf})

	assert.Equal(t, 12, detail.TotalSold)
	assert.Equal(t, 6, detail.Periods)
	assert.InDelta(t, 2.0*WeeksPerMonth, detail.Speed, 1e-9)
	assert.InDelta(t, 8.7, detail.Speed, 0.05)
}

func TestEstimateVelocityExcludesStockOutWeeks(t *testing.T) {
	asOf := day(2025, 6, 16)

	// Ten units on hand eight weeks ago, sold 3/week for four weeks,
	// then a zero snapshot and silence: the stocked-out weeks must not
	// drag the average down.
	snaps := []domain.InventorySnapshot{
		snapshot(asOf.AddDate(0, 0, -56), 10),
		snapshot(asOf.AddDate(0, 0, -28), 0),
	}
	var sales []domain.Sale
	for i := 5; i <= 8; i++ {
		sales = append(sales, sale(asOf.AddDate(0, 0, -7*i), 3, 150))
	}
	h := history(snaps, sales, nil)

	detail := EstimateVelocityDetail(h, VelocityOptions{AsOf: asOf})

	assert.Equal(t, 12, detail.TotalSold)
	assert.Equal(t, 4, detail.Periods)
	assert.InDelta(t, 3.0*WeeksPerMonth, detail.Speed, 1e-9)
}

func TestEstimateVelocityCountsSalesBeforeFirstSnapshot(t *testing.T) {
	asOf := day(2025, 6, 16)

	// Sales recorded before the first snapshot still count; unknown
	// weeks without sales do not.
	h := history(
		[]domain.InventorySnapshot{snapshot(asOf.AddDate(0, 0, -7), 4)},
		[]domain.Sale{
			sale(asOf.AddDate(0, 0, -70), 6, 300),
			sale(asOf.AddDate(0, 0, -63), 6, 300),
		},
		nil,
	)

	detail := EstimateVelocityDetail(h, VelocityOptions{AsOf: asOf})

	// Two sale weeks plus the two weeks with known positive stock.
	assert.Equal(t, 12, detail.TotalSold)
	assert.Equal(t, 4, detail.Periods)
}

func TestEstimateVelocityFallbackWindow(t *testing.T) {
	asOf := day(2025, 6, 16)

	// Only sale happened ~8 months ago: invisible in the 26-week
	// window, picked up by the 52-week fallback.
	oldSale := sale(asOf.AddDate(0, 0, -7*35), 5, 250)
	h := history(nil, []domain.Sale{oldSale}, nil)

	short := velocityOverWindow(h, 26, asOf)
	assert.Zero(t, short.Speed)

	detail := EstimateVelocityDetail(h, VelocityOptions{Weeks: 26, FallbackWeeks: 52, AsOf: asOf})
	assert.Greater(t, detail.Speed, 0.0)
	assert.Equal(t, 5, detail.TotalSold)
}

func TestEstimateVelocityNonNegative(t *testing.T) {
	asOf := day(2025, 6, 16)
	histories := []*VariantHistory{
		history(nil, nil, nil),
		history([]domain.InventorySnapshot{snapshot(asOf, 0)}, nil, nil),
		history([]domain.InventorySnapshot{snapshot(asOf, 3)}, []domain.Sale{sale(asOf, 1, 50)}, nil),
	}
	for _, h := range histories {
		assert.GreaterOrEqual(t, EstimateVelocity(h, VelocityOptions{AsOf: asOf}), 0.0)
	}
}

func TestWeightedAverageSpeed(t *testing.T) {
	details := []VelocityDetail{
		{Speed: 10, TotalSold: 30},
		{Speed: 2, TotalSold: 10},
	}
	assert.InDelta(t, 8.0, WeightedAverageSpeed(details), 1e-9)

	// All-zero sales fall back to a simple mean.
	unsold := []VelocityDetail{{Speed: 4}, {Speed: 2}}
	assert.InDelta(t, 3.0, WeightedAverageSpeed(unsold), 1e-9)

	assert.Zero(t, WeightedAverageSpeed(nil))
}
