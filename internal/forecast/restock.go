// internal/forecast/restock.go
package forecast

import (
	"math"

	"github.com/hoshigear/inventory-api/internal/domain"
)

// Restock alert thresholds. A product is urgent when more than
// ZeroStockShare of its variants are at zero, and normal when at least
// LowCoverShare of them have under LowCoverMonths of cover.
const (
	AlertUrgent = "urgent"
	AlertNormal = "normal"

	ZeroStockShare = 0.20
	LowCoverShare  = 0.50
	LowCoverMonths = 3.0

	// RestockTargetMonths is the coverage the restock-to quantity aims
	// for.
	RestockTargetMonths = 6.0
)

// VariantStock is the per-variant input to the alert classifier:
// current stock plus the estimated monthly velocity.
type VariantStock struct {
	VariantCode  string  `json:"variant_code"`
	Size         string  `json:"size"`
	CurrentStock int     `json:"current_stock"`
	Speed        float64 `json:"speed"`
}

// VariantRestock is VariantStock extended with the derived coverage and
// reorder quantity. MonthsLeft is nil when the velocity is zero and the
// horizon is therefore undefined.
type VariantRestock struct {
	VariantStock
	MonthsLeft *float64 `json:"months_left"`
	RestockTo6 int      `json:"restock_to_6"`
}

// ProductAlert flags one product for the restock dashboard.
type ProductAlert struct {
	Product      domain.Product   `json:"product"`
	AlertType    string           `json:"alert_type"`
	Variants     []VariantRestock `json:"variants"`
	TotalRestock int              `json:"total_restock"`
}

// ProductStock bundles a product with its variants' stock/velocity
// metrics, computed once upstream and reused here.
type ProductStock struct {
	Product  domain.Product
	Variants []VariantStock
}

// RestockAlerts classifies each eligible product as urgent, normal or
// unflagged. Urgent wins over normal; unflagged products are omitted.
func RestockAlerts(products []ProductStock) []ProductAlert {
	var alerts []ProductAlert
	for _, ps := range products {
		if alert, flagged := classifyProduct(ps); flagged {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

func classifyProduct(ps ProductStock) (ProductAlert, bool) {
	if len(ps.Variants) == 0 {
		return ProductAlert{}, false
	}

	variants := make([]VariantRestock, 0, len(ps.Variants))
	zeroStock := 0
	lowCover := 0
	totalRestock := 0

	for _, vs := range ps.Variants {
		vr := VariantRestock{VariantStock: vs}
		if vs.Speed > 0 {
			months := float64(vs.CurrentStock) / vs.Speed
			vr.MonthsLeft = &months
			if months < LowCoverMonths {
				lowCover++
			}
			vr.RestockTo6 = restockToTarget(vs.Speed, vs.CurrentStock)
		}
		if vs.CurrentStock == 0 {
			zeroStock++
		}
		totalRestock += vr.RestockTo6
		variants = append(variants, vr)
	}

	n := float64(len(ps.Variants))
	alert := ProductAlert{Product: ps.Product, Variants: variants, TotalRestock: totalRestock}
	switch {
	case float64(zeroStock)/n > ZeroStockShare:
		alert.AlertType = AlertUrgent
	case float64(lowCover)/n >= LowCoverShare:
		alert.AlertType = AlertNormal
	default:
		return ProductAlert{}, false
	}
	return alert, true
}

// restockToTarget is the unit count needed to reach RestockTargetMonths
// of coverage at the given velocity.
func restockToTarget(speed float64, currentStock int) int {
	need := math.Ceil(speed*RestockTargetMonths - float64(currentStock))
	if need < 0 {
		return 0
	}
	return int(need)
}
