package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestConfidenceScoreAllNeutral(t *testing.T) {
	// A product with no comparable data scores neutral everywhere:
	// weighted 1.0 of 2.0 is exactly 50, Medium.
	result := ConfidenceScore(HealthMetrics{}, DefaultScoringConfig())

	assert.Equal(t, ConfidenceMedium, result.Level)
	assert.InDelta(t, 50.0, result.Score, 1e-9)
	for factor, score := range result.Components {
		assert.Equal(t, 1, score, factor)
	}
	assert.False(t, result.Severe)
}

func TestConfidenceScoreStrongCoreProduct(t *testing.T) {
	m := HealthMetrics{
		MonthsToSellOut: fp(6),
		Speed:           3.0,
		AvgSpeed:        2.0, // ratio 1.5
		ReturnRate:      fp(0.02),
		AvgReturnRate:   0.10, // ratio 0.2
		DiscountPct:     fp(2),
		AvgDiscountPct:  10, // 8 points below average
		MarginPct:       fp(65),
		AvgMarginPct:    55, // 10 points above average
		TotalSold:       150,
		IsCore:          true,
	}

	result := ConfidenceScore(m, DefaultScoringConfig())

	assert.Equal(t, ConfidenceHigh, result.Level)
	assert.InDelta(t, 100.0, result.Score, 1e-9)
	for factor, score := range result.Components {
		assert.Equal(t, 2, score, factor)
	}
}

func TestConfidenceScoreSevereOverstockOverride(t *testing.T) {
	// Every other factor perfect, but 20 months of stock on hand: the
	// severe signal forces Low and caps the score.
	m := HealthMetrics{
		MonthsToSellOut: fp(20),
		Speed:           3.0,
		AvgSpeed:        2.0,
		ReturnRate:      fp(0.02),
		AvgReturnRate:   0.10,
		DiscountPct:     fp(2),
		AvgDiscountPct:  10,
		MarginPct:       fp(65),
		AvgMarginPct:    55,
		TotalSold:       150,
		IsCore:          true,
	}

	result := ConfidenceScore(m, DefaultScoringConfig())

	assert.True(t, result.Severe)
	assert.Equal(t, ConfidenceLow, result.Level)
	assert.LessOrEqual(t, result.Score, 30.0)
}

func TestConfidenceScoreSevereDeepDiscount(t *testing.T) {
	m := HealthMetrics{
		MonthsToSellOut: fp(4),
		DiscountPct:     fp(55), // past the absolute 50% threshold
		AvgDiscountPct:  10,
	}

	result := ConfidenceScore(m, DefaultScoringConfig())

	assert.True(t, result.Severe)
	assert.Equal(t, ConfidenceLow, result.Level)
}

func TestConfidenceCoverageBandsDifferByItemClass(t *testing.T) {
	cfg := DefaultScoringConfig()

	// 10 months of cover is fine for a core basic but stale territory
	// for a seasonal run.
	months := HealthMetrics{MonthsToSellOut: fp(10)}

	core := months
	core.IsCore = true
	assert.Equal(t, 2, scoreCoverage(core, cfg))
	assert.Equal(t, 0, scoreCoverage(months, cfg))

	// Under a month of cover scores 0 for both.
	thin := HealthMetrics{MonthsToSellOut: fp(0.5), IsCore: true}
	assert.Equal(t, 0, scoreCoverage(thin, cfg))
}

func TestConfidenceSubScores(t *testing.T) {
	cfg := DefaultScoringConfig()

	assert.Equal(t, 2, scoreSpeed(HealthMetrics{Speed: 2.4, AvgSpeed: 2}, cfg))
	assert.Equal(t, 1, scoreSpeed(HealthMetrics{Speed: 2, AvgSpeed: 2}, cfg))
	assert.Equal(t, 0, scoreSpeed(HealthMetrics{Speed: 1, AvgSpeed: 2}, cfg))

	assert.Equal(t, 2, scoreReturns(HealthMetrics{ReturnRate: fp(0.04), AvgReturnRate: 0.10}, cfg))
	assert.Equal(t, 1, scoreReturns(HealthMetrics{ReturnRate: fp(0.10), AvgReturnRate: 0.10}, cfg))
	assert.Equal(t, 0, scoreReturns(HealthMetrics{ReturnRate: fp(0.20), AvgReturnRate: 0.10}, cfg))

	assert.Equal(t, 2, scoreDiscount(HealthMetrics{DiscountPct: fp(3), AvgDiscountPct: 10}, cfg))
	assert.Equal(t, 1, scoreDiscount(HealthMetrics{DiscountPct: fp(15), AvgDiscountPct: 10}, cfg))
	assert.Equal(t, 0, scoreDiscount(HealthMetrics{DiscountPct: fp(25), AvgDiscountPct: 10}, cfg))

	assert.Equal(t, 2, scoreMargin(HealthMetrics{MarginPct: fp(60), AvgMarginPct: 55}, cfg))
	assert.Equal(t, 1, scoreMargin(HealthMetrics{MarginPct: fp(52), AvgMarginPct: 55}, cfg))
	assert.Equal(t, 0, scoreMargin(HealthMetrics{MarginPct: fp(40), AvgMarginPct: 55}, cfg))
}

func TestConfidenceBonusIsCapped(t *testing.T) {
	cfg := DefaultScoringConfig()

	// All three bonuses would add 0.20; the cap keeps the blended value
	// inside [0, 2] and the score inside [0, 100].
	m := HealthMetrics{
		MonthsToSellOut: fp(6),
		Speed:           3, AvgSpeed: 2,
		ReturnRate: fp(0.02), AvgReturnRate: 0.10,
		DiscountPct: fp(2), AvgDiscountPct: 10,
		MarginPct: fp(65), AvgMarginPct: 55,
		TotalSold: 500,
		IsCore:    true,
	}
	result := ConfidenceScore(m, cfg)
	assert.LessOrEqual(t, result.Score, 100.0)
	assert.GreaterOrEqual(t, result.Score, 0.0)
}

func TestConfidenceAdvisories(t *testing.T) {
	cfg := DefaultScoringConfig()

	overstocked := ConfidenceScore(HealthMetrics{MonthsToSellOut: fp(18)}, cfg)
	assert.Condition(t, func() bool {
		for _, a := range overstocked.Advisories {
			if a == "overstocked: current stock covers ~18 months of sales" {
				return true
			}
		}
		return false
	})

	window := ConfidenceScore(HealthMetrics{MonthsToSellOut: fp(3), RestockMonths: 3}, cfg)
	assert.NotEmpty(t, window.Advisories)

	gifts := ConfidenceScore(HealthMetrics{GiftRate: fp(0.25)}, cfg)
	assert.NotEmpty(t, gifts.Advisories)

	clean := ConfidenceScore(HealthMetrics{MonthsToSellOut: fp(6), IsCore: true}, cfg)
	assert.Empty(t, clean.Advisories)
}
