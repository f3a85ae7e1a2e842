// internal/forecast/projection.go
package forecast

import "time"

const DefaultHorizonMonths = 12

// ProjectionOptions controls the simulated month range.
type ProjectionOptions struct {
	HorizonMonths int
	// FallbackMonths is how far before the current month the
	// simulation starts when a variant has no snapshot at all.
	FallbackMonths int
	AsOf           time.Time
}

func (o ProjectionOptions) withDefaults() ProjectionOptions {
	if o.HorizonMonths <= 0 {
		o.HorizonMonths = DefaultHorizonMonths
	}
	if o.FallbackMonths <= 0 {
		o.FallbackMonths = 6
	}
	if o.AsOf.IsZero() {
		o.AsOf = time.Now().UTC()
	}
	return o
}

// ProjectionInput pairs a variant's history with its estimated monthly
// velocity.
type ProjectionInput struct {
	History *VariantHistory
	Speed   float64
}

// VariantSeries is one variant's projected stock level per month.
type VariantSeries struct {
	VariantCode string    `json:"variant_code"`
	Levels      []float64 `json:"levels"`
}

// ProductProjection is the aligned projection for a set of variants:
// Months[i] labels Series[*].Levels[i] and Total[i].
type ProductProjection struct {
	Months []string        `json:"months"`
	Series []VariantSeries `json:"series"`
	Total  []float64       `json:"total"`
}

// ProjectStock simulates stock month by month for each variant and sums
// the aligned series. The axis runs from the current month through
// HorizonMonths ahead. Months at or before the current one consume the
// exact recorded sales; strictly future months consume the estimated
// velocity. Stock never goes negative.
func ProjectStock(inputs []ProjectionInput, opts ProjectionOptions) ProductProjection {
	opts = opts.withDefaults()
	currentMonth := monthOf(opts.AsOf)

	months := make([]string, opts.HorizonMonths+1)
	total := make([]float64, opts.HorizonMonths+1)
	for i := range months {
		months[i] = monthKey(currentMonth.AddDate(0, i, 0))
	}

	series := make([]VariantSeries, 0, len(inputs))
	for _, in := range inputs {
		levels := projectVariantLevels(in.History, in.Speed, opts)
		for i, lvl := range levels {
			total[i] += lvl
		}
		series = append(series, VariantSeries{
			VariantCode: in.History.Variant.VariantCode,
			Levels:      levels,
		})
	}

	return ProductProjection{Months: months, Series: series, Total: total}
}

func projectVariantLevels(h *VariantHistory, speed float64, opts ProjectionOptions) []float64 {
	currentMonth := monthOf(opts.AsOf)
	restocks := restocksByMonth(h, currentMonth)

	// Start from the latest snapshot at or before now; with no snapshot
	// the stock is unknown, so simulate forward from an empty fallback
	// window and let recorded restocks build it up.
	level := 0.0
	startMonth := currentMonth.AddDate(0, -opts.FallbackMonths, 0)
	if count, snapDate, ok := h.LatestSnapshot(opts.AsOf); ok {
		level = float64(count)
		startMonth = monthOf(snapDate)
	}

	levels := make([]float64, 0, opts.HorizonMonths+1)
	horizonEnd := currentMonth.AddDate(0, opts.HorizonMonths, 0)
	for m := startMonth; !m.After(horizonEnd); m = m.AddDate(0, 1, 0) {
		if !m.After(currentMonth) {
			// Historical months replay what actually happened.
			monthEnd := m.AddDate(0, 1, -1)
			level -= float64(h.SoldBetween(m, monthEnd))
		} else {
			level -= speed
		}
		level += float64(restocks[monthKey(m)])
		if level < 0 {
			level = 0
		}
		if !m.Before(currentMonth) {
			levels = append(levels, level)
		}
	}
	return levels
}

// restocksByMonth attributes order items to the month their units are
// (or were) expected on the shelf: delivered lines by actual arrival,
// pending lines by expected arrival, and overdue pending lines pushed
// to next month instead of back-dated into history.
func restocksByMonth(h *VariantHistory, currentMonth time.Time) map[string]int {
	restocks := make(map[string]int)
	for _, oi := range h.OrderItems {
		var m time.Time
		qty := oi.Quantity
		if oi.Delivered() {
			m = monthOf(*oi.DateArrived)
			qty = oi.DeliveredQuantity()
		} else {
			m = monthOf(oi.DateExpected)
			if m.Before(currentMonth) {
				m = currentMonth.AddDate(0, 1, 0)
			}
		}
		restocks[monthKey(m)] += qty
	}
	return restocks
}
