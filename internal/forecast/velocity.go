// internal/forecast/velocity.go
package forecast

import "time"

// WeeksPerMonth converts an average weekly rate to a monthly one.
const WeeksPerMonth = 365.25 / 12 / 7

const (
	DefaultVelocityWeeks = 26
	DefaultFallbackWeeks = 52
)

// VelocityOptions controls the estimation window. Zero values fall back
// to the defaults; a zero AsOf means "today".
type VelocityOptions struct {
	Weeks         int
	FallbackWeeks int
	AsOf          time.Time
}

// VelocityDetail is the full estimator output. TotalSold is the raw
// unit count across counted weeks and doubles as a weighting factor
// when averaging velocities across variants.
type VelocityDetail struct {
	Speed     float64 `json:"speed"` // units per month
	TotalSold int     `json:"total_sold"`
	Periods   int     `json:"periods"` // counted weeks
}

func (o VelocityOptions) withDefaults() VelocityOptions {
	if o.Weeks <= 0 {
		o.Weeks = DefaultVelocityWeeks
	}
	if o.FallbackWeeks <= 0 {
		o.FallbackWeeks = DefaultFallbackWeeks
	}
	if o.AsOf.IsZero() {
		o.AsOf = time.Now().UTC()
	}
	return o
}

// EstimateVelocity computes a variant's average units sold per month
// over calendar weeks, excluding weeks where the variant was known to
// be out of stock and nothing sold. When the short window yields
// exactly zero, the estimate is retried over the fallback window so a
// slow mover whose last sale predates the window still gets a rate.
func EstimateVelocity(h *VariantHistory, opts VelocityOptions) float64 {
	return EstimateVelocityDetail(h, opts).Speed
}

// EstimateVelocityDetail is EstimateVelocity with the counted-week and
// total-sold breakdown.
func EstimateVelocityDetail(h *VariantHistory, opts VelocityOptions) VelocityDetail {
	opts = opts.withDefaults()

	detail := velocityOverWindow(h, opts.Weeks, opts.AsOf)
	if detail.Speed == 0 && opts.FallbackWeeks > opts.Weeks {
		detail = velocityOverWindow(h, opts.FallbackWeeks, opts.AsOf)
	}
	return detail
}

func velocityOverWindow(h *VariantHistory, weeks int, asOf time.Time) VelocityDetail {
	var (
		totalSold    int
		countedWeeks int
	)

	firstSnapshot, hasSnapshot := firstSnapshotDate(h)

	// Walk the calendar weeks oldest-first, ending with the week that
	// contains asOf.
	anchorStart := weekStart(asOf)
	for i := weeks - 1; i >= 0; i-- {
		start := anchorStart.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 6)

		sold := h.SoldBetween(start, end)

		var hadStock bool
		if hasSnapshot && !firstSnapshot.After(end) {
			count, _ := h.StockOn(end)
			hadStock = count > 0
		} else {
			// Before the first snapshot stock is unknown; trust a sale
			// as evidence the variant was on hand, otherwise skip the
			// week rather than dragging the average down.
			hadStock = sold > 0
		}

		if sold > 0 || hadStock {
			countedWeeks++
			totalSold += sold
		}
	}

	if countedWeeks == 0 {
		return VelocityDetail{}
	}

	weekly := float64(totalSold) / float64(countedWeeks)
	return VelocityDetail{
		Speed:     weekly * WeeksPerMonth,
		TotalSold: totalSold,
		Periods:   countedWeeks,
	}
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset)
}

func firstSnapshotDate(h *VariantHistory) (time.Time, bool) {
	if len(h.Snapshots) == 0 {
		return time.Time{}, false
	}
	return h.Snapshots[0].Date, true
}

// WeightedAverageSpeed averages per-variant speeds weighted by each
// variant's total sold units, falling back to a simple mean when no
// variant has sold anything.
func WeightedAverageSpeed(details []VelocityDetail) float64 {
	if len(details) == 0 {
		return 0
	}

	var weighted, weight float64
	for _, d := range details {
		weighted += d.Speed * float64(d.TotalSold)
		weight += float64(d.TotalSold)
	}
	if weight > 0 {
		return weighted / weight
	}

	var sum float64
	for _, d := range details {
		sum += d.Speed
	}
	return sum / float64(len(details))
}
