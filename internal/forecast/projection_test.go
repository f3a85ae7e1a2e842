package forecast

import (
	"testing"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStockDrawdownToZero(t *testing.T) {
	// 10 on hand, selling 2/month, no restocks: 10 8 6 4 2 0 0.
	asOf := day(2025, 6, 15)
	h := history([]domain.InventorySnapshot{snapshot(day(2025, 6, 1), 10)}, nil, nil)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 2}},
		ProjectionOptions{HorizonMonths: 6, AsOf: asOf},
	)

	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{10, 8, 6, 4, 2, 0, 0}, proj.Series[0].Levels)
	assert.Equal(t, []float64{10, 8, 6, 4, 2, 0, 0}, proj.Total)
	assert.Equal(t, []string{"2025-06", "2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12"}, proj.Months)
}

func TestProjectStockCurrentMonthUsesActualSales(t *testing.T) {
	asOf := day(2025, 6, 20)
	h := history(
		[]domain.InventorySnapshot{snapshot(day(2025, 6, 10), 20)},
		[]domain.Sale{
			sale(day(2025, 6, 5), 3, 150),
			sale(day(2025, 6, 25), 1, 50),
		},
		nil,
	)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 5}},
		ProjectionOptions{HorizonMonths: 2, AsOf: asOf},
	)

	// The current month consumes the 4 recorded units, not the velocity;
	// the snapshot count already reflects sales before its date, but the
	// replay stays consistent with the month's full recorded total.
	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{16, 11, 6}, proj.Series[0].Levels)
}

func TestProjectStockReplaysHistoryFromOldSnapshot(t *testing.T) {
	asOf := day(2025, 6, 15)
	h := history(
		[]domain.InventorySnapshot{snapshot(day(2025, 3, 1), 12)},
		[]domain.Sale{
			sale(day(2025, 3, 10), 2, 100),
			sale(day(2025, 4, 10), 3, 150),
			sale(day(2025, 5, 10), 1, 50),
			sale(day(2025, 6, 10), 2, 100),
		},
		nil,
	)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 2}},
		ProjectionOptions{HorizonMonths: 2, AsOf: asOf},
	)

	// March through June replay actual sales (12-2-3-1-2 = 4), then the
	// velocity takes over.
	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{4, 2, 0}, proj.Series[0].Levels)
}

func TestProjectStockAppliesRestocks(t *testing.T) {
	asOf := day(2025, 6, 15)
	arrived := day(2025, 6, 3)
	actual := 8

	h := history(
		[]domain.InventorySnapshot{snapshot(day(2025, 5, 1), 5)},
		nil,
		[]domain.OrderItem{
			// Delivered in June with a short shipment.
			{Quantity: 10, ActualQuantity: &actual, DateExpected: day(2025, 5, 20), DateArrived: &arrived},
			// Still pending, due in August.
			{Quantity: 6, DateExpected: day(2025, 8, 10)},
		},
	)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 1}},
		ProjectionOptions{HorizonMonths: 3, AsOf: asOf},
	)

	// May: 5-0. June: +8 delivered. Aug: +6 pending.
	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{13, 12, 17, 16}, proj.Series[0].Levels)
}

func TestProjectStockPushesOverduePendingToNextMonth(t *testing.T) {
	asOf := day(2025, 6, 15)
	h := history(
		[]domain.InventorySnapshot{snapshot(day(2025, 6, 1), 2)},
		nil,
		[]domain.OrderItem{
			// Expected in April, never arrived: assume next month, not a
			// rewrite of history.
			{Quantity: 10, DateExpected: day(2025, 4, 5)},
		},
	)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 2}},
		ProjectionOptions{HorizonMonths: 2, AsOf: asOf},
	)

	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{2, 10, 8}, proj.Series[0].Levels)
}

func TestProjectStockNeverNegative(t *testing.T) {
	asOf := day(2025, 6, 15)
	h := history(
		[]domain.InventorySnapshot{snapshot(day(2025, 6, 1), 3)},
		[]domain.Sale{sale(day(2025, 6, 10), 50, 2500)},
		nil,
	)

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 10}},
		ProjectionOptions{HorizonMonths: 4, AsOf: asOf},
	)

	for _, lvl := range proj.Series[0].Levels {
		assert.GreaterOrEqual(t, lvl, 0.0)
	}
	for _, lvl := range proj.Total {
		assert.GreaterOrEqual(t, lvl, 0.0)
	}
}

func TestProjectStockNoSnapshotBuildsFromRestocks(t *testing.T) {
	asOf := day(2025, 6, 15)
	arrived := day(2025, 5, 20)
	h := history(nil, nil, []domain.OrderItem{
		{Quantity: 9, DateExpected: day(2025, 5, 10), DateArrived: &arrived},
	})

	proj := ProjectStock(
		[]ProjectionInput{{History: h, Speed: 3}},
		ProjectionOptions{HorizonMonths: 2, AsOf: asOf},
	)

	// Unknown starting stock simulates from zero; the May delivery is the
	// only stock on hand.
	require.Len(t, proj.Series, 1)
	assert.Equal(t, []float64{9, 6, 3}, proj.Series[0].Levels)
}

func TestProjectStockSumsVariantSeries(t *testing.T) {
	asOf := day(2025, 6, 15)
	a := history([]domain.InventorySnapshot{snapshot(day(2025, 6, 1), 6)}, nil, nil)
	b := history([]domain.InventorySnapshot{snapshot(day(2025, 6, 1), 4)}, nil, nil)

	proj := ProjectStock(
		[]ProjectionInput{
			{History: a, Speed: 2},
			{History: b, Speed: 1},
		},
		ProjectionOptions{HorizonMonths: 3, AsOf: asOf},
	)

	require.Len(t, proj.Series, 2)
	assert.Equal(t, []float64{6, 4, 2, 0}, proj.Series[0].Levels)
	assert.Equal(t, []float64{4, 3, 2, 1}, proj.Series[1].Levels)
	assert.Equal(t, []float64{10, 7, 4, 1}, proj.Total)
}

func TestMonthHelpers(t *testing.T) {
	m := monthOf(time.Date(2025, 6, 23, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, day(2025, 6, 1), m)
	assert.Equal(t, "2025-06", monthKey(m))
}
