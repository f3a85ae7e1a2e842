// internal/report/sizemix.go
package report

import (
	"math"
	"sort"

	"github.com/hoshigear/inventory-api/internal/domain"
)

// SizeMixOptions controls the size-mix window. RecencyWeights, when
// set, must have one entry per month with index 0 being the most recent
// month; otherwise each month weighs 1/Months.
type SizeMixOptions struct {
	Months         int
	RecencyWeights []float64
}

const DefaultSizeMixMonths = 6

func (o SizeMixOptions) withDefaults() SizeMixOptions {
	if o.Months <= 0 {
		o.Months = DefaultSizeMixMonths
	}
	if len(o.RecencyWeights) != o.Months {
		uniform := make([]float64, o.Months)
		for i := range uniform {
			uniform[i] = 1.0 / float64(o.Months)
		}
		o.RecencyWeights = uniform
	}
	return o
}

// SizeMixRow is one size's share of demand. IdealPct across all rows
// sums to ~100 and is the recommended order mix for the next
// production run.
type SizeMixRow struct {
	Size        string  `json:"size"`
	AvgMonthly  float64 `json:"avg_monthly"`
	EndingStock int     `json:"ending_stock"`
	SellThrough float64 `json:"sell_through"`
	DemandScore float64 `json:"demand_score"`
	IdealPct    float64 `json:"ideal_pct"`
}

// SizeMix scores each size by recency-weighted sales times sell-through
// and normalizes the scores into an order-mix percentage. monthlySales
// holds sold units per size for each month in the window, index 0 being
// the most recent month; endingStock is the on-hand count per size from
// the latest snapshot date.
//
// Sell-through punishes sizes that only look slow because they were
// overbought: a size that sold 10 and has 90 left scores far below one
// that sold 10 and has 2 left.
func SizeMix(monthlySales []map[string]int, endingStock map[string]int, opts SizeMixOptions) []SizeMixRow {
	opts = opts.withDefaults()

	weighted := make(map[string]float64)
	for idx := 0; idx < opts.Months && idx < len(monthlySales); idx++ {
		for size, qty := range monthlySales[idx] {
			weighted[size] += float64(qty) * opts.RecencyWeights[idx]
		}
	}

	sizes := make(map[string]struct{})
	for size := range weighted {
		sizes[size] = struct{}{}
	}
	for size := range endingStock {
		sizes[size] = struct{}{}
	}

	scores := make(map[string]float64)
	totalScore := 0.0
	for size := range sizes {
		scores[size] = weighted[size] * sellThrough(weighted[size], endingStock[size])
		totalScore += scores[size]
	}
	if totalScore == 0 {
		totalScore = 1
	}

	rows := make([]SizeMixRow, 0, len(sizes))
	for size := range sizes {
		rows = append(rows, SizeMixRow{
			Size:        size,
			AvgMonthly:  round1(weighted[size]),
			EndingStock: endingStock[size],
			SellThrough: round2(sellThrough(weighted[size], endingStock[size])),
			DemandScore: round1(scores[size]),
			IdealPct:    round1(scores[size] / totalScore * 100),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return domain.SizeRank(rows[i].Size) < domain.SizeRank(rows[j].Size)
	})
	return rows
}

// sellThrough is the fraction of available units (sold + remaining)
// that actually sold. Nothing sold and nothing stocked counts as fully
// sold through so absent sizes don't drag the mix.
func sellThrough(sold float64, ending int) float64 {
	if sold+float64(ending) == 0 {
		return 1.0
	}
	return sold / (sold + float64(ending))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
