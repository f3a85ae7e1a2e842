// internal/forecast/safestock.go
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
)

// Trend direction of a variant's recent sales vs its blended average.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// SafeStockRow is one variant's stock-floor assessment.
type SafeStockRow struct {
	VariantCode  string  `json:"variant_code"`
	Size         string  `json:"size"`
	CurrentStock int     `json:"current_stock"`
	AvgSpeed     float64 `json:"avg_speed"` // units/month, blended 12/6/3
	MinThreshold int     `json:"min_threshold"`
	RestockQty   int     `json:"restock_qty"`
	Trend        string  `json:"trend"`
}

// SafeStockSummary aggregates the rows at product level. Variants with
// zero blended speed are excluded from the totals so dead sizes don't
// inflate the restock requirement.
type SafeStockSummary struct {
	Rows               []SafeStockRow `json:"rows"`
	TotalCurrentStock  int            `json:"total_current_stock"`
	AvgSpeed           float64        `json:"avg_speed"`
	TotalRestockNeeded int            `json:"total_restock_needed"`
}

// SafeStock computes per-variant minimum stock thresholds and 6-month
// restock quantities from simple monthly averages over the last 12, 6
// and 3 months. The blended average smooths a single hot or dead
// quarter; the 3-month average against it gives the trend.
func SafeStock(histories []*VariantHistory, asOf time.Time) SafeStockSummary {
	currentMonth := monthOf(asOf)
	m12 := currentMonth.AddDate(0, -12, 0)
	m6 := currentMonth.AddDate(0, -6, 0)
	m3 := currentMonth.AddDate(0, -3, 0)

	rows := make([]SafeStockRow, 0, len(histories))
	for _, h := range histories {
		stock, _ := h.StockOn(asOf)

		avg12 := float64(h.SoldBetween(m12, asOf)) / 12.0
		avg6 := float64(h.SoldBetween(m6, asOf)) / 6.0
		avg3 := float64(h.SoldBetween(m3, asOf)) / 3.0
		avgSpeed := (avg12 + avg6 + avg3) / 3.0

		trend := TrendFlat
		if avg3 > avgSpeed {
			trend = TrendUp
		} else if avg3 < avgSpeed {
			trend = TrendDown
		}

		rows = append(rows, SafeStockRow{
			VariantCode:  h.Variant.VariantCode,
			Size:         h.Variant.Size,
			CurrentStock: stock,
			AvgSpeed:     math.Round(avgSpeed*10) / 10,
			MinThreshold: int(math.Ceil(avg12 * 2)),
			RestockQty:   int(math.Ceil(avg12 * RestockTargetMonths)),
			Trend:        trend,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return domain.SizeRank(rows[i].Size) < domain.SizeRank(rows[j].Size)
	})

	summary := SafeStockSummary{Rows: rows}
	for _, r := range rows {
		if r.AvgSpeed <= 0 {
			continue
		}
		summary.TotalCurrentStock += r.CurrentStock
		summary.AvgSpeed += r.AvgSpeed
		summary.TotalRestockNeeded += r.RestockQty
	}
	summary.AvgSpeed = math.Round(summary.AvgSpeed*10) / 10
	return summary
}
