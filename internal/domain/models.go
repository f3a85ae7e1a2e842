// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one sellable style, identified by its product code.
type Product struct {
	ID             int64            `json:"id" db:"id"`
	ProductCode    string           `json:"product_code" db:"product_code"`
	ProductName    string           `json:"product_name" db:"product_name"`
	RetailPrice    *decimal.Decimal `json:"retail_price" db:"retail_price"`
	Decommissioned bool             `json:"decommissioned" db:"decommissioned"`
	Discounted     bool             `json:"discounted" db:"discounted"`
	NoRestock      bool             `json:"no_restock" db:"no_restock"`
	RestockMonths  int              `json:"restock_months" db:"restock_months"`
	Style          string           `json:"style" db:"style"`
	Type           string           `json:"type" db:"type"`
	Subtype        string           `json:"subtype" db:"subtype"`
	Age            string           `json:"age" db:"age"`
	Groups         []string         `json:"groups" db:"-"`
	Series         []string         `json:"series" db:"-"`
}

// Variant is a size/color/gender combination of a product, tracked
// independently for stock and sales.
type Variant struct {
	ID             int64   `json:"id" db:"id"`
	ProductID      int64   `json:"product_id" db:"product_id"`
	VariantCode    string  `json:"variant_code" db:"variant_code"`
	Size           string  `json:"size" db:"size"`
	Gender         string  `json:"gender" db:"gender"`
	PrimaryColor   string  `json:"primary_color" db:"primary_color"`
	SecondaryColor *string `json:"secondary_color" db:"secondary_color"`
}

// InventorySnapshot is a point-in-time on-hand count for one variant.
// Snapshots are immutable; newer snapshots supersede older ones.
type InventorySnapshot struct {
	ID        int64     `json:"id" db:"id"`
	VariantID int64     `json:"variant_id" db:"variant_id"`
	Date      time.Time `json:"date" db:"date"`
	Count     int       `json:"count" db:"inventory_count"`
}

// Sale is a single sold line. OrderNumber groups lines into one
// customer order. Return fields are nil when nothing came back.
type Sale struct {
	ID             int64            `json:"id" db:"id"`
	OrderNumber    string           `json:"order_number" db:"order_number"`
	Date           time.Time        `json:"date" db:"date"`
	VariantID      int64            `json:"variant_id" db:"variant_id"`
	SoldQuantity   int              `json:"sold_quantity" db:"sold_quantity"`
	ReturnQuantity *int             `json:"return_quantity" db:"return_quantity"`
	SoldValue      decimal.Decimal  `json:"sold_value" db:"sold_value"`
	ReturnValue    *decimal.Decimal `json:"return_value" db:"return_value"`
	ReferrerID     *int64           `json:"referrer_id" db:"referrer_id"`
}

// Referrer is a party credited with bringing in a sale.
type Referrer struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Order is one purchase order placed with the factory.
type Order struct {
	ID         int64     `json:"id" db:"id"`
	OrderDate  time.Time `json:"order_date" db:"order_date"`
	InvoiceID  *string   `json:"invoice_id" db:"invoice_id"`
	InvoiceKey *string   `json:"invoice_key" db:"invoice_key"`
}

// OrderItem is one restock line on a purchase order. DateArrived nil
// means the line is still pending; setting it is a one-way transition.
type OrderItem struct {
	ID             int64           `json:"id" db:"id"`
	OrderID        int64           `json:"order_id" db:"order_id"`
	VariantID      int64           `json:"variant_id" db:"variant_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	ActualQuantity *int            `json:"actual_quantity" db:"actual_quantity"`
	ItemCostPrice  decimal.Decimal `json:"item_cost_price" db:"item_cost_price"`
	DateExpected   time.Time       `json:"date_expected" db:"date_expected"`
	DateArrived    *time.Time      `json:"date_arrived" db:"date_arrived"`
}

// Delivered reports whether the line has arrived.
func (oi OrderItem) Delivered() bool {
	return oi.DateArrived != nil
}

// DeliveredQuantity is the quantity that actually arrived, falling back
// to the ordered quantity when the actual count was not recorded.
func (oi OrderItem) DeliveredQuantity() int {
	if oi.ActualQuantity != nil {
		return *oi.ActualQuantity
	}
	return oi.Quantity
}

// ProductFilter narrows catalog queries. Zero values mean "no filter".
type ProductFilter struct {
	IncludeDecommissioned bool     `json:"include_decommissioned"`
	Style                 string   `json:"style"`
	Type                  string   `json:"type"`
	Subtype               string   `json:"subtype"`
	Age                   string   `json:"age"`
	Groups                []string `json:"groups"`
}

// SalesAggregate holds store-wide sale totals used as the baseline the
// scoring engine compares individual products against.
type SalesAggregate struct {
	TotalSold     int             `db:"total_sold"`
	TotalReturned int             `db:"total_returned"`
	TotalValue    decimal.Decimal `db:"total_value"`
	TotalRetail   decimal.Decimal `db:"total_retail"`
	TotalCost     decimal.Decimal `db:"total_cost"`
	VariantCount  int             `db:"variant_count"`
}
