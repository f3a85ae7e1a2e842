// internal/report/summary.go
package report

import (
	"sort"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/forecast"
	"github.com/shopspring/decimal"
)

// allowedCategories are the product types that get their own dashboard
// card, in display order. Everything else folds into "others".
var allowedCategories = []struct {
	Code  string
	Label string
}{
	{"gi", "Gi"},
	{"rg", "Rashguard"},
	{"dk", "Shorts"},
	{"ck", "Spats"},
	{"bt", "Belts"},
}

const OthersCategory = "others"

// TypeAggregates holds the per-type sums a category card is built from,
// keyed by type code.
type TypeAggregates struct {
	LastMonthSales map[string]int
	Sales3M        map[string]int
	Sales12M       map[string]int
	CurrentStock   map[string]int
	OnOrder        map[string]int
}

// ProductBreakdownRow is one product's recent movement inside a
// category card.
type ProductBreakdownRow struct {
	ProductCode    string  `json:"product_code"`
	ProductName    string  `json:"product_name"`
	TypeCode       string  `json:"-"`
	LastMonthSales int     `json:"last_month_sales"`
	AvgSales       float64 `json:"avg_sales"`
	CurrentStock   int     `json:"current_stock"`
}

// CategorySummary is one dashboard card: a product type's stock, sales
// averages over three windows, inbound orders and its busiest products.
type CategorySummary struct {
	TypeCode       string                `json:"type_code"`
	Label          string                `json:"label"`
	Stock          int                   `json:"stock"`
	LastMonthSales int                   `json:"last_month_sales"`
	AvgSales12     float64               `json:"avg_sales_12"`
	AvgSales3      float64               `json:"avg_sales_3"`
	ItemsOnOrder   int                   `json:"items_on_order"`
	Products       []ProductBreakdownRow `json:"products"`
}

// CategorySummaries builds one card per allowed type plus an "others"
// card holding the rest. Products with no sales last month are dropped
// from the breakdown; the rest sort by last-month sales descending.
func CategorySummaries(agg TypeAggregates, products []ProductBreakdownRow) []CategorySummary {
	allowed := make(map[string]bool, len(allowedCategories))
	for _, c := range allowedCategories {
		allowed[c.Code] = true
	}

	byType := make(map[string][]ProductBreakdownRow)
	for _, p := range products {
		if p.LastMonthSales <= 0 {
			continue
		}
		key := p.TypeCode
		if !allowed[key] {
			key = OthersCategory
		}
		byType[key] = append(byType[key], p)
	}
	for _, rows := range byType {
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].LastMonthSales > rows[j].LastMonthSales
		})
	}

	summaries := make([]CategorySummary, 0, len(allowedCategories)+1)
	for _, c := range allowedCategories {
		summaries = append(summaries, CategorySummary{
			TypeCode:       c.Code,
			Label:          c.Label,
			Stock:          agg.CurrentStock[c.Code],
			LastMonthSales: agg.LastMonthSales[c.Code],
			AvgSales12:     float64(agg.Sales12M[c.Code]) / 12.0,
			AvgSales3:      float64(agg.Sales3M[c.Code]) / 3.0,
			ItemsOnOrder:   agg.OnOrder[c.Code],
			Products:       byType[c.Code],
		})
	}

	others := CategorySummary{
		TypeCode: OthersCategory,
		Label:    "Others",
		Products: byType[OthersCategory],
	}
	others.Stock = sumExcluding(agg.CurrentStock, allowed)
	others.LastMonthSales = sumExcluding(agg.LastMonthSales, allowed)
	others.AvgSales12 = float64(sumExcluding(agg.Sales12M, allowed)) / 12.0
	others.AvgSales3 = float64(sumExcluding(agg.Sales3M, allowed)) / 3.0
	others.ItemsOnOrder = sumExcluding(agg.OnOrder, allowed)
	summaries = append(summaries, others)

	return summaries
}

func sumExcluding(m map[string]int, excluded map[string]bool) int {
	total := 0
	for key, v := range m {
		if !excluded[key] {
			total += v
		}
	}
	return total
}

// BucketRevenue is revenue and units attributed to one price bucket.
type BucketRevenue struct {
	Bucket  forecast.PriceBucket `json:"bucket"`
	Units   int                  `json:"units"`
	Revenue decimal.Decimal      `json:"revenue"`
}

// PricedSale pairs a sale line with its product's retail price for
// bucket classification.
type PricedSale struct {
	Sale        domain.Sale
	RetailPrice *decimal.Decimal
}

// RevenueByBucket splits sales revenue across the price buckets, in
// reporting order. Every classifiable line lands in exactly one bucket;
// refund-only lines are skipped.
func RevenueByBucket(sales []PricedSale) []BucketRevenue {
	byBucket := make(map[forecast.PriceBucket]*BucketRevenue, len(forecast.PriceBuckets))
	out := make([]BucketRevenue, len(forecast.PriceBuckets))
	for i, b := range forecast.PriceBuckets {
		out[i] = BucketRevenue{Bucket: b, Revenue: decimal.Zero}
		byBucket[b] = &out[i]
	}

	for _, ps := range sales {
		bucket, ok := forecast.ClassifyPriceBucket(ps.Sale, ps.RetailPrice)
		if !ok {
			continue
		}
		entry := byBucket[bucket]
		entry.Units += ps.Sale.SoldQuantity
		entry.Revenue = entry.Revenue.Add(ps.Sale.SoldValue)
	}
	return out
}
