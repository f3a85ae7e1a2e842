// internal/forecast/pricebucket.go
package forecast

import (
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PriceBucket classifies one sale line by discount depth.
type PriceBucket string

const (
	BucketFullPrice     PriceBucket = "full_price"
	BucketSmallDiscount PriceBucket = "small_discount"
	BucketDiscount      PriceBucket = "discount"
	BucketWholesale     PriceBucket = "wholesale"
	BucketGifted        PriceBucket = "gifted"
)

// Discount-ratio thresholds. FullPriceTolerance absorbs rounding in the
// recorded sale values; the remaining cutoffs separate promo pricing
// from clearance and wholesale. Report totals reconcile against these
// exact values.
var (
	FullPriceTolerance = decimal.NewFromFloat(0.005)
	SmallDiscountMax   = decimal.NewFromFloat(0.05)
	DiscountMax        = decimal.NewFromFloat(0.20)
)

// PriceBuckets lists every bucket in reporting order.
var PriceBuckets = []PriceBucket{
	BucketFullPrice, BucketSmallDiscount, BucketDiscount, BucketWholesale, BucketGifted,
}

// ClassifyPriceBucket assigns a sale line to exactly one bucket, or
// ok=false for lines with no positive sold quantity (refund rows,
// corrections), which are excluded from bucketed reporting.
//
// The unit price falls back to the absolute per-unit return value when
// the sold value is zero, which rescues refunds mis-recorded as sales.
// A zero unit price is a giveaway; an unknown retail price defaults to
// full price since no discount can be computed.
func ClassifyPriceBucket(sale domain.Sale, retailPrice *decimal.Decimal) (PriceBucket, bool) {
	if sale.SoldQuantity <= 0 {
		return "", false
	}

	qty := decimal.NewFromInt(int64(sale.SoldQuantity))
	unitPrice := sale.SoldValue.Div(qty)
	if unitPrice.IsZero() && sale.ReturnValue != nil {
		unitPrice = sale.ReturnValue.Abs().Div(qty)
	}

	if unitPrice.IsZero() {
		return BucketGifted, true
	}
	if retailPrice == nil || !retailPrice.IsPositive() {
		return BucketFullPrice, true
	}

	diffRatio := retailPrice.Sub(unitPrice).Div(*retailPrice)
	switch {
	case diffRatio.LessThanOrEqual(FullPriceTolerance):
		return BucketFullPrice, true
	case diffRatio.LessThan(SmallDiscountMax):
		return BucketSmallDiscount, true
	case diffRatio.LessThan(DiscountMax):
		return BucketDiscount, true
	default:
		return BucketWholesale, true
	}
}
