// internal/forecast/confidence.go
package forecast

import (
	"fmt"
	"math"
)

// Confidence levels for the per-product recommendation.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// Sub-score factor names, used as keys in ConfidenceResult.Components
// and in the weight tables.
const (
	FactorCoverage = "coverage"
	FactorSpeed    = "speed"
	FactorReturns  = "returns"
	FactorDiscount = "discount"
	FactorMargin   = "margin"
)

// HealthMetrics is the materialized input to the confidence scorer.
// Pointer fields are nil when the underlying data is missing; missing
// data scores neutral rather than penalizing the product. Rates are
// fractions (0..1), percentages are points (0..100).
type HealthMetrics struct {
	MonthsToSellOut *float64 `json:"months_to_sell_out"`
	Speed           float64  `json:"speed"`
	AvgSpeed        float64  `json:"avg_speed"`
	ReturnRate      *float64 `json:"return_rate"`
	AvgReturnRate   float64  `json:"avg_return_rate"`
	DiscountPct     *float64 `json:"discount_pct"`
	AvgDiscountPct  float64  `json:"avg_discount_pct"`
	MarginPct       *float64 `json:"margin_pct"`
	AvgMarginPct    float64  `json:"avg_margin_pct"`
	GiftRate        *float64 `json:"gift_rate"`
	TotalSold       int      `json:"total_sold"`
	IsCore          bool     `json:"is_core"`
	RestockMonths   int      `json:"restock_months"`
}

// ConfidenceResult is the scorer output: a 0-100 score, its categorical
// level, the raw 0/1/2 sub-scores and human-readable advisories.
type ConfidenceResult struct {
	Level      string         `json:"level"`
	Score      float64        `json:"score"`
	Components map[string]int `json:"components"`
	Advisories []string       `json:"advisories"`
	Severe     bool           `json:"severe"`
}

// CoverageBands maps months-of-cover to a 0/1/2 sub-score: below Min or
// above OKMax scores 0, up to GoodMax scores 2, up to OKMax scores 1.
type CoverageBands struct {
	Min     float64
	GoodMax float64
	OKMax   float64
}

// ScoringConfig holds every band, weight and bonus the scorer uses.
// The values were tuned against the store's history; treat them as
// data, not as something to re-derive.
type ScoringConfig struct {
	CoreCoverage     CoverageBands
	SeasonalCoverage CoverageBands

	SpeedGoodRatio float64
	SpeedOKRatio   float64

	ReturnGoodRatio float64
	ReturnOKRatio   float64

	DiscountGoodDelta float64 // points below average
	DiscountOKDelta   float64 // points above average still acceptable

	MarginGoodDelta float64 // points above average
	MarginOKDelta   float64 // points below average still acceptable

	CoreWeights     map[string]float64
	SeasonalWeights map[string]float64

	BonusCoverageDiscount float64
	BonusMargin           float64
	BonusVolume           float64
	BonusCap              float64
	VolumeThreshold       int

	HighCutoff   float64
	MediumCutoff float64

	SevereSellOutMonths float64
	SevereReturnRatio   float64
	SevereDiscountPct   float64
	SevereDiscountDelta float64
	SevereMarginDelta   float64
	SevereScoreCap      float64

	GiftRateWarn float64
}

// DefaultScoringConfig returns the production weights. Core items are
// judged on keeping stock and margin; seasonal items on moving through
// their run before it goes stale.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CoreCoverage:     CoverageBands{Min: 1, GoodMax: 12, OKMax: 18},
		SeasonalCoverage: CoverageBands{Min: 1, GoodMax: 5, OKMax: 9},

		SpeedGoodRatio: 1.2,
		SpeedOKRatio:   0.8,

		ReturnGoodRatio: 0.5,
		ReturnOKRatio:   1.0,

		DiscountGoodDelta: 5,
		DiscountOKDelta:   10,

		MarginGoodDelta: 5,
		MarginOKDelta:   5,

		CoreWeights: map[string]float64{
			FactorCoverage: 0.35,
			FactorMargin:   0.25,
			FactorSpeed:    0.15,
			FactorReturns:  0.15,
			FactorDiscount: 0.10,
		},
		SeasonalWeights: map[string]float64{
			FactorCoverage: 0.30,
			FactorSpeed:    0.25,
			FactorDiscount: 0.20,
			FactorReturns:  0.15,
			FactorMargin:   0.10,
		},

		BonusCoverageDiscount: 0.10,
		BonusMargin:           0.05,
		BonusVolume:           0.05,
		BonusCap:              0.20,
		VolumeThreshold:       100,

		HighCutoff:   67,
		MediumCutoff: 40,

		SevereSellOutMonths: 15,
		SevereReturnRatio:   1.5,
		SevereDiscountPct:   50,
		SevereDiscountDelta: 25,
		SevereMarginDelta:   15,
		SevereScoreCap:      30,

		GiftRateWarn: 0.10,
	}
}

// ConfidenceScore blends the banded sub-scores into a 0-100 rating. Any
// severe signal overrides the blend: the product is Low confidence and
// capped at SevereScoreCap no matter how well the rest scores.
func ConfidenceScore(m HealthMetrics, cfg ScoringConfig) ConfidenceResult {
	components := map[string]int{
		FactorCoverage: scoreCoverage(m, cfg),
		FactorSpeed:    scoreSpeed(m, cfg),
		FactorReturns:  scoreReturns(m, cfg),
		FactorDiscount: scoreDiscount(m, cfg),
		FactorMargin:   scoreMargin(m, cfg),
	}

	weights := cfg.SeasonalWeights
	if m.IsCore {
		weights = cfg.CoreWeights
	}

	weighted := 0.0
	for factor, w := range weights {
		weighted += w * float64(components[factor])
	}

	bonus := 0.0
	if components[FactorCoverage] == 2 && components[FactorDiscount] == 2 {
		bonus += cfg.BonusCoverageDiscount
	}
	if components[FactorMargin] == 2 {
		bonus += cfg.BonusMargin
	}
	if m.TotalSold >= cfg.VolumeThreshold {
		bonus += cfg.BonusVolume
	}
	if bonus > cfg.BonusCap {
		bonus = cfg.BonusCap
	}
	weighted = math.Min(weighted+bonus, 2.0)

	score := math.Round(weighted/2.0*1000) / 10

	result := ConfidenceResult{
		Score:      score,
		Components: components,
		Advisories: advisories(m, cfg),
	}

	if severeSignal(m, cfg) {
		result.Severe = true
		result.Level = ConfidenceLow
		result.Score = math.Min(score, cfg.SevereScoreCap)
		return result
	}

	switch {
	case score >= cfg.HighCutoff:
		result.Level = ConfidenceHigh
	case score >= cfg.MediumCutoff:
		result.Level = ConfidenceMedium
	default:
		result.Level = ConfidenceLow
	}
	return result
}

func scoreCoverage(m HealthMetrics, cfg ScoringConfig) int {
	if m.MonthsToSellOut == nil {
		return 1
	}
	bands := cfg.SeasonalCoverage
	if m.IsCore {
		bands = cfg.CoreCoverage
	}
	months := *m.MonthsToSellOut
	switch {
	case months < bands.Min:
		return 0
	case months <= bands.GoodMax:
		return 2
	case months <= bands.OKMax:
		return 1
	default:
		return 0
	}
}

func scoreSpeed(m HealthMetrics, cfg ScoringConfig) int {
	if m.AvgSpeed <= 0 {
		return 1
	}
	ratio := m.Speed / m.AvgSpeed
	switch {
	case ratio >= cfg.SpeedGoodRatio:
		return 2
	case ratio >= cfg.SpeedOKRatio:
		return 1
	default:
		return 0
	}
}

func scoreReturns(m HealthMetrics, cfg ScoringConfig) int {
	if m.ReturnRate == nil || m.AvgReturnRate <= 0 {
		return 1
	}
	ratio := *m.ReturnRate / m.AvgReturnRate
	switch {
	case ratio <= cfg.ReturnGoodRatio:
		return 2
	case ratio <= cfg.ReturnOKRatio:
		return 1
	default:
		return 0
	}
}

func scoreDiscount(m HealthMetrics, cfg ScoringConfig) int {
	if m.DiscountPct == nil {
		return 1
	}
	delta := *m.DiscountPct - m.AvgDiscountPct
	switch {
	case delta <= -cfg.DiscountGoodDelta:
		return 2
	case delta <= cfg.DiscountOKDelta:
		return 1
	default:
		return 0
	}
}

func scoreMargin(m HealthMetrics, cfg ScoringConfig) int {
	if m.MarginPct == nil {
		return 1
	}
	delta := *m.MarginPct - m.AvgMarginPct
	switch {
	case delta >= cfg.MarginGoodDelta:
		return 2
	case delta >= -cfg.MarginOKDelta:
		return 1
	default:
		return 0
	}
}

// severeSignal reports whether any single factor is bad enough to
// dominate the blended score.
func severeSignal(m HealthMetrics, cfg ScoringConfig) bool {
	if m.MonthsToSellOut != nil && *m.MonthsToSellOut >= cfg.SevereSellOutMonths {
		return true
	}
	if m.ReturnRate != nil && m.AvgReturnRate > 0 && *m.ReturnRate >= cfg.SevereReturnRatio*m.AvgReturnRate {
		return true
	}
	if m.DiscountPct != nil {
		if *m.DiscountPct >= cfg.SevereDiscountPct || *m.DiscountPct >= m.AvgDiscountPct+cfg.SevereDiscountDelta {
			return true
		}
	}
	if m.MarginPct != nil && *m.MarginPct <= m.AvgMarginPct-cfg.SevereMarginDelta {
		return true
	}
	return false
}

// advisories renders the warnings shown next to the score. Output only;
// nothing downstream parses these.
func advisories(m HealthMetrics, cfg ScoringConfig) []string {
	var out []string

	if m.MonthsToSellOut != nil {
		months := *m.MonthsToSellOut
		lead := float64(m.RestockMonths)
		if lead > 0 && months <= lead+1 {
			out = append(out, fmt.Sprintf(
				"restock window closing: ~%.1f months of stock left and restocking takes %d months", months, m.RestockMonths))
		}
		if months >= cfg.SevereSellOutMonths {
			out = append(out, fmt.Sprintf("overstocked: current stock covers ~%.0f months of sales", months))
		}
		if m.AvgSpeed > 0 && m.Speed/m.AvgSpeed >= cfg.SpeedGoodRatio && months < LowCoverMonths {
			out = append(out, fmt.Sprintf(
				"fast seller running low: selling %.1fx the store average with ~%.1f months of stock", m.Speed/m.AvgSpeed, months))
		}
	}
	if m.ReturnRate != nil && m.AvgReturnRate > 0 && *m.ReturnRate >= cfg.SevereReturnRatio*m.AvgReturnRate {
		out = append(out, fmt.Sprintf("return rate %.0f%% is well above the store average", *m.ReturnRate*100))
	}
	if m.DiscountPct != nil && (*m.DiscountPct >= cfg.SevereDiscountPct || *m.DiscountPct >= m.AvgDiscountPct+cfg.SevereDiscountDelta) {
		out = append(out, fmt.Sprintf("selling at a deep discount: %.0f%% off retail on average", *m.DiscountPct))
	}
	if m.MarginPct != nil && *m.MarginPct <= m.AvgMarginPct-cfg.SevereMarginDelta {
		out = append(out, fmt.Sprintf("margin %.0f%% is well below the store average of %.0f%%", *m.MarginPct, m.AvgMarginPct))
	}
	if m.GiftRate != nil && *m.GiftRate >= cfg.GiftRateWarn {
		out = append(out, fmt.Sprintf("%.0f%% of units were given away", *m.GiftRate*100))
	}
	return out
}
