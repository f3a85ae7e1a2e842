package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeMixOrdersAndNormalizes(t *testing.T) {
	monthly := []map[string]int{
		{"S": 4, "M": 10, "L": 6},
		{"S": 4, "M": 10, "L": 6},
	}
	stock := map[string]int{"S": 2, "M": 5, "L": 30}

	rows := SizeMix(monthly, stock, SizeMixOptions{Months: 2})

	require.Len(t, rows, 3)
	assert.Equal(t, "S", rows[0].Size)
	assert.Equal(t, "M", rows[1].Size)
	assert.Equal(t, "L", rows[2].Size)

	totalPct := 0.0
	for _, row := range rows {
		totalPct += row.IdealPct
	}
	assert.InDelta(t, 100.0, totalPct, 0.5)

	// L sold as much as S+ but sits on 30 units: sell-through drags its
	// share below M's.
	assert.Greater(t, rows[1].IdealPct, rows[2].IdealPct)
}

func TestSizeMixUniformWeights(t *testing.T) {
	monthly := []map[string]int{
		{"M": 6},
		{"M": 2},
	}

	rows := SizeMix(monthly, nil, SizeMixOptions{Months: 2})

	require.Len(t, rows, 1)
	assert.InDelta(t, 4.0, rows[0].AvgMonthly, 1e-9)
	// Nothing left in stock: fully sold through.
	assert.InDelta(t, 1.0, rows[0].SellThrough, 1e-9)
	assert.InDelta(t, 100.0, rows[0].IdealPct, 1e-9)
}

func TestSizeMixRecencyWeights(t *testing.T) {
	// All the volume is in the most recent month; heavy recency weight
	// keeps the average near it.
	monthly := []map[string]int{
		{"M": 10},
		{"M": 0},
	}

	rows := SizeMix(monthly, nil, SizeMixOptions{Months: 2, RecencyWeights: []float64{0.8, 0.2}})

	require.Len(t, rows, 1)
	assert.InDelta(t, 8.0, rows[0].AvgMonthly, 1e-9)
}

func TestSizeMixIncludesStockedButUnsoldSizes(t *testing.T) {
	monthly := []map[string]int{{"M": 5}}
	stock := map[string]int{"M": 5, "XL": 20}

	rows := SizeMix(monthly, stock, SizeMixOptions{Months: 1})

	require.Len(t, rows, 2)
	assert.Equal(t, "XL", rows[1].Size)
	assert.Zero(t, rows[1].AvgMonthly)
	assert.Zero(t, rows[1].IdealPct)
	assert.Equal(t, 20, rows[1].EndingStock)
}

func TestSizeMixEmpty(t *testing.T) {
	assert.Empty(t, SizeMix(nil, nil, SizeMixOptions{}))
}
