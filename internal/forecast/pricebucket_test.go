package forecast

import (
	"testing"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func pricedSale(qty int, soldValue float64) domain.Sale {
	return domain.Sale{SoldQuantity: qty, SoldValue: decimal.NewFromFloat(soldValue)}
}

func TestClassifyPriceBucket(t *testing.T) {
	retail := dec(50)

	tests := []struct {
		name   string
		sale   domain.Sale
		retail *decimal.Decimal
		want   PriceBucket
	}{
		{"exact retail", pricedSale(2, 100), retail, BucketFullPrice},
		{"within rounding tolerance", pricedSale(1, 49.80), retail, BucketFullPrice},
		{"small discount", pricedSale(1, 48), retail, BucketSmallDiscount},   // 4% off
		{"discount", pricedSale(1, 45), retail, BucketDiscount},              // 10% off
		{"wholesale", pricedSale(1, 25), retail, BucketWholesale},            // 50% off
		{"twenty percent is wholesale", pricedSale(1, 40), retail, BucketWholesale},
		{"gifted", pricedSale(1, 0), retail, BucketGifted},
		{"no retail price", pricedSale(1, 30), nil, BucketFullPrice},
		{"zero retail price", pricedSale(1, 30), dec(0), BucketFullPrice},
		{"above retail", pricedSale(1, 60), retail, BucketFullPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyPriceBucket(tt.sale, tt.retail)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPriceBucketExcludesNonPositiveQuantity(t *testing.T) {
	_, ok := ClassifyPriceBucket(pricedSale(0, 50), dec(50))
	assert.False(t, ok)

	_, ok = ClassifyPriceBucket(pricedSale(-1, -50), dec(50))
	assert.False(t, ok)
}

func TestClassifyPriceBucketUsesReturnValueFallback(t *testing.T) {
	// A refund line recorded with zero sold value but a negative return
	// value still carries the unit price.
	s := domain.Sale{
		SoldQuantity: 1,
		SoldValue:    decimal.Zero,
		ReturnValue:  dec(-45),
	}

	got, ok := ClassifyPriceBucket(s, dec(50))

	require.True(t, ok)
	assert.Equal(t, BucketDiscount, got)
}

func TestClassifyPriceBucketBoundaries(t *testing.T) {
	retail := dec(1000)

	// Exactly 0.5% off is still full price; just past it is not.
	atTolerance, _ := ClassifyPriceBucket(pricedSale(1, 995), retail)
	assert.Equal(t, BucketFullPrice, atTolerance)

	pastTolerance, _ := ClassifyPriceBucket(pricedSale(1, 994), retail)
	assert.Equal(t, BucketSmallDiscount, pastTolerance)

	// Exactly 5% off moves from small_discount to discount.
	atSmallMax, _ := ClassifyPriceBucket(pricedSale(1, 950), retail)
	assert.Equal(t, BucketDiscount, atSmallMax)

	// Exactly 20% off moves from discount to wholesale.
	atDiscountMax, _ := ClassifyPriceBucket(pricedSale(1, 800), retail)
	assert.Equal(t, BucketWholesale, atDiscountMax)
}

func TestClassifyPriceBucketAlwaysInKnownBucket(t *testing.T) {
	known := make(map[PriceBucket]bool, len(PriceBuckets))
	for _, b := range PriceBuckets {
		known[b] = true
	}

	retail := dec(80)
	for value := 0.0; value <= 100; value += 2.5 {
		bucket, ok := ClassifyPriceBucket(pricedSale(1, value), retail)
		require.True(t, ok)
		assert.True(t, known[bucket], "value %.2f landed in unknown bucket %q", value, bucket)
	}
}
