// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/report"
)

// VariantData is one variant with everything the forecasting engine
// needs about it, loaded in a single repository call so velocity,
// projection and scoring all see the same rows.
type VariantData struct {
	Variant    domain.Variant
	Snapshots  []domain.InventorySnapshot
	Sales      []domain.Sale
	OrderItems []domain.OrderItem
}

// ProductData bundles a product with its variants' full history.
type ProductData struct {
	Product  domain.Product
	Variants []VariantData
}

// CatalogRepository covers product and referrer lookups plus the one
// catalog write: reassigning sales to a referrer.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, productCode string) (*domain.Product, error)
	ListVariants(ctx context.Context, productCode string) ([]domain.Variant, error)
	ListReferrers(ctx context.Context) ([]domain.Referrer, error)
	// ReassignReferrer points the given sales at a referrer and returns
	// how many rows changed.
	ReassignReferrer(ctx context.Context, saleIDs []int64, referrerID int64) (int64, error)
}

// HistoryRepository loads the per-variant histories forecasting runs
// on.
type HistoryRepository interface {
	ProductHistory(ctx context.Context, productCode string) (*ProductData, error)
	// ProductHistories loads history for every product matching the
	// filter. Decommissioned products are excluded unless the filter
	// includes them.
	ProductHistories(ctx context.Context, filter domain.ProductFilter) ([]ProductData, error)
	// StoreAggregate sums store-wide sales in the window, the baseline
	// individual products are scored against.
	StoreAggregate(ctx context.Context, from, to time.Time) (*domain.SalesAggregate, error)
}

// ReportRepository serves the aggregated rows the report calculators
// consume. Aggregation happens in SQL; shaping happens in the report
// package.
type ReportRepository interface {
	TypeAggregates(ctx context.Context, asOf time.Time) (report.TypeAggregates, error)
	ProductBreakdown(ctx context.Context, asOf time.Time) ([]report.ProductBreakdownRow, error)
	// MonthlySalesBySize returns sold units per size for each of the
	// last `months` calendar months, most recent first. category narrows
	// to one product type; "" or "all" means everything.
	MonthlySalesBySize(ctx context.Context, category string, months int, asOf time.Time) ([]map[string]int, error)
	// EndingStockBySize sums on-hand stock per size at the latest
	// snapshot date.
	EndingStockBySize(ctx context.Context, category string) (map[string]int, error)
	// PricedSales returns the window's sales joined with each product's
	// retail price for price-bucket classification.
	PricedSales(ctx context.Context, from, to time.Time) ([]report.PricedSale, error)
	SalesWindow(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
}

// OrderRepository covers purchase orders and their invoice metadata.
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, []domain.OrderItem, error)
	// AttachInvoice records the stored invoice object for an order.
	AttachInvoice(ctx context.Context, orderID int64, invoiceID, invoiceKey string) error
	// MarkDelivered sets the arrival date and actual quantity on a
	// pending order item.
	MarkDelivered(ctx context.Context, orderItemID int64, arrived time.Time, actualQuantity *int) error
}
