package report

import (
	"testing"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refSale(orderNumber string, referrerID int64, qty int, value float64) domain.Sale {
	return domain.Sale{
		OrderNumber:  orderNumber,
		ReferrerID:   &referrerID,
		SoldQuantity: qty,
		SoldValue:    decimal.NewFromFloat(value),
	}
}

func TestReferrerSummaries(t *testing.T) {
	referrers := []domain.Referrer{
		{ID: 1, Name: "Coach Ana"},
		{ID: 2, Name: "Gym North"},
	}
	unattributed := domain.Sale{OrderNumber: "O-9", SoldQuantity: 5, SoldValue: decimal.NewFromInt(250)}
	sales := []domain.Sale{
		refSale("O-1", 1, 2, 100),
		refSale("O-1", 1, 1, 50), // same order, counts once
		refSale("O-2", 1, 1, 0),  // gifted unit
		refSale("O-3", 2, 4, 400),
		unattributed,
	}

	summaries := ReferrerSummaries(referrers, sales)

	require.Len(t, summaries, 2)

	// Sorted by revenue descending.
	top := summaries[0]
	assert.Equal(t, int64(2), top.ReferrerID)
	assert.Equal(t, "Gym North", top.ReferrerName)
	assert.Equal(t, 1, top.Orders)
	assert.Equal(t, 4, top.Units)
	assert.True(t, top.Revenue.Equal(decimal.NewFromInt(400)))
	assert.Zero(t, top.GiftedUnits)

	second := summaries[1]
	assert.Equal(t, int64(1), second.ReferrerID)
	assert.Equal(t, 2, second.Orders)
	assert.Equal(t, 4, second.Units)
	assert.True(t, second.Revenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, second.GiftedUnits)
}

func TestReferrerSummariesEmpty(t *testing.T) {
	assert.Empty(t, ReferrerSummaries(nil, []domain.Sale{
		{OrderNumber: "O-1", SoldQuantity: 1, SoldValue: decimal.NewFromInt(10)},
	}))
}
