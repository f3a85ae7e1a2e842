package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/report"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	db *DB
}

// NewReportRepository creates a postgres-backed report repository.
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

// latestStockByType sums each variant's most recent snapshot, grouped
// by product type.
const latestStockByTypeQuery = `
    WITH latest AS (
        SELECT DISTINCT ON (variant_id) variant_id, inventory_count
        FROM inventory_snapshots
        ORDER BY variant_id, date DESC
    )
    SELECT p.type, COALESCE(SUM(l.inventory_count), 0) AS total
    FROM latest l
    JOIN variants v ON v.id = l.variant_id
    JOIN products p ON p.id = v.product_id
    GROUP BY p.type
`

func (r *reportRepository) TypeAggregates(ctx context.Context, asOf time.Time) (report.TypeAggregates, error) {
	firstOfMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := firstOfMonth.AddDate(0, -1, 0)
	lastMonthEnd := firstOfMonth.AddDate(0, 0, -1)
	threeMonthsStart := firstOfMonth.AddDate(0, -3, 0)
	twelveMonthsStart := asOf.AddDate(0, -12, 0)

	agg := report.TypeAggregates{}
	var err error

	if agg.LastMonthSales, err = r.salesByType(ctx, lastMonthStart, lastMonthEnd); err != nil {
		return agg, fmt.Errorf("failed to get last month sales by type: %w", err)
	}
	if agg.Sales3M, err = r.salesByType(ctx, threeMonthsStart, lastMonthEnd); err != nil {
		return agg, fmt.Errorf("failed to get 3-month sales by type: %w", err)
	}
	if agg.Sales12M, err = r.salesByType(ctx, twelveMonthsStart, asOf); err != nil {
		return agg, fmt.Errorf("failed to get 12-month sales by type: %w", err)
	}

	if agg.CurrentStock, err = r.typeTotals(ctx, latestStockByTypeQuery); err != nil {
		return agg, fmt.Errorf("failed to get stock by type: %w", err)
	}

	onOrderQuery := `
        SELECT p.type, COALESCE(SUM(oi.quantity), 0) AS total
        FROM order_items oi
        JOIN variants v ON v.id = oi.variant_id
        JOIN products p ON p.id = v.product_id
        WHERE oi.date_expected >= $1 AND oi.date_arrived IS NULL
        GROUP BY p.type
    `
	if agg.OnOrder, err = r.typeTotals(ctx, onOrderQuery, firstOfMonth); err != nil {
		return agg, fmt.Errorf("failed to get on-order quantities by type: %w", err)
	}

	log.Debug().Time("as_of", asOf).Msg("report: type aggregates fetched")
	return agg, nil
}

func (r *reportRepository) salesByType(ctx context.Context, from, to time.Time) (map[string]int, error) {
	query := `
        SELECT p.type, COALESCE(SUM(s.sold_quantity), 0) AS total
        FROM sales s
        JOIN variants v ON v.id = s.variant_id
        JOIN products p ON p.id = v.product_id
        WHERE s.date >= $1 AND s.date <= $2
        GROUP BY p.type
    `
	return r.typeTotals(ctx, query, from, to)
}

type typeTotalRow struct {
	Type  string `db:"type"`
	Total int    `db:"total"`
}

func (r *reportRepository) typeTotals(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	var rows []typeTotalRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Type] = row.Total
	}
	return out, nil
}

func (r *reportRepository) ProductBreakdown(ctx context.Context, asOf time.Time) ([]report.ProductBreakdownRow, error) {
	firstOfMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := firstOfMonth.AddDate(0, -1, 0)
	lastMonthEnd := firstOfMonth.AddDate(0, 0, -1)
	threeMonthsStart := firstOfMonth.AddDate(0, -3, 0)

	query := `
        WITH latest AS (
            SELECT DISTINCT ON (variant_id) variant_id, inventory_count
            FROM inventory_snapshots
            ORDER BY variant_id, date DESC
        )
        SELECT
            p.product_code,
            p.product_name,
            p.type AS type_code,
            COALESCE(SUM(s.sold_quantity) FILTER (WHERE s.date >= $1 AND s.date <= $2), 0) AS last_month_sales,
            COALESCE(SUM(s.sold_quantity) FILTER (WHERE s.date >= $3 AND s.date <= $2), 0) AS sales_3m,
            COALESCE(MAX(stock.total), 0) AS current_stock
        FROM products p
        JOIN variants v ON v.product_id = p.id
        LEFT JOIN sales s ON s.variant_id = v.id
        LEFT JOIN (
            SELECT v2.product_id, SUM(l.inventory_count) AS total
            FROM latest l
            JOIN variants v2 ON v2.id = l.variant_id
            GROUP BY v2.product_id
        ) stock ON stock.product_id = p.id
        GROUP BY p.product_code, p.product_name, p.type
        ORDER BY last_month_sales DESC
    `

	type breakdownRow struct {
		ProductCode    string `db:"product_code"`
		ProductName    string `db:"product_name"`
		TypeCode       string `db:"type_code"`
		LastMonthSales int    `db:"last_month_sales"`
		Sales3M        int    `db:"sales_3m"`
		CurrentStock   int    `db:"current_stock"`
	}

	var rows []breakdownRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, lastMonthStart, lastMonthEnd, threeMonthsStart); err != nil {
		log.Error().Err(err).Msg("report: failed to fetch product breakdown")
		return nil, fmt.Errorf("failed to fetch product breakdown: %w", err)
	}

	out := make([]report.ProductBreakdownRow, len(rows))
	for i, row := range rows {
		out[i] = report.ProductBreakdownRow{
			ProductCode:    row.ProductCode,
			ProductName:    row.ProductName,
			TypeCode:       row.TypeCode,
			LastMonthSales: row.LastMonthSales,
			AvgSales:       float64(row.Sales3M) / 3.0,
			CurrentStock:   row.CurrentStock,
		}
	}
	return out, nil
}

func (r *reportRepository) MonthlySalesBySize(ctx context.Context, category string, months int, asOf time.Time) ([]map[string]int, error) {
	firstOfMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	categoryClause := ""
	args := []interface{}{}
	if category != "" && category != "all" {
		categoryClause = "AND p.type = $3"
	}

	out := make([]map[string]int, months)
	for idx := 0; idx < months; idx++ {
		monthStart := firstOfMonth.AddDate(0, -idx, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)

		query := fmt.Sprintf(`
            SELECT v.size, COALESCE(SUM(s.sold_quantity), 0) AS total
            FROM sales s
            JOIN variants v ON v.id = s.variant_id
            JOIN products p ON p.id = v.product_id
            WHERE s.date >= $1 AND s.date <= $2 %s
            GROUP BY v.size
        `, categoryClause)

		args = args[:0]
		args = append(args, monthStart, monthEnd)
		if categoryClause != "" {
			args = append(args, category)
		}

		type sizeRow struct {
			Size  string `db:"size"`
			Total int    `db:"total"`
		}
		var rows []sizeRow
		if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
			log.Error().Err(err).Int("month_index", idx).Msg("report: failed to fetch monthly sales by size")
			return nil, fmt.Errorf("failed to fetch monthly sales by size: %w", err)
		}

		monthly := make(map[string]int, len(rows))
		for _, row := range rows {
			monthly[row.Size] = row.Total
		}
		out[idx] = monthly
	}
	return out, nil
}

func (r *reportRepository) EndingStockBySize(ctx context.Context, category string) (map[string]int, error) {
	categoryClause := ""
	args := []interface{}{}
	if category != "" && category != "all" {
		categoryClause = "AND p.type = $1"
		args = append(args, category)
	}

	// Stock "as of the latest snapshot date": every variant's count on
	// the most recent day any counting happened.
	query := fmt.Sprintf(`
        WITH latest_day AS (
            SELECT MAX(date) AS latest_date FROM inventory_snapshots
        )
        SELECT v.size, COALESCE(SUM(i.inventory_count), 0) AS total
        FROM inventory_snapshots i
        JOIN latest_day d ON i.date = d.latest_date
        JOIN variants v ON v.id = i.variant_id
        JOIN products p ON p.id = v.product_id
        WHERE TRUE %s
        GROUP BY v.size
    `, categoryClause)

	type sizeRow struct {
		Size  string `db:"size"`
		Total int    `db:"total"`
	}
	var rows []sizeRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		log.Error().Err(err).Msg("report: failed to fetch ending stock by size")
		return nil, fmt.Errorf("failed to fetch ending stock by size: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Size] = row.Total
	}
	return out, nil
}

func (r *reportRepository) PricedSales(ctx context.Context, from, to time.Time) ([]report.PricedSale, error) {
	query := `
        SELECT s.id, s.order_number, s.date, s.variant_id, s.sold_quantity,
               s.return_quantity, s.sold_value, s.return_value, s.referrer_id,
               p.retail_price
        FROM sales s
        JOIN variants v ON v.id = s.variant_id
        JOIN products p ON p.id = v.product_id
        WHERE s.date >= $1 AND s.date <= $2
        ORDER BY s.date
    `

	type pricedRow struct {
		domain.Sale
		RetailPrice *decimal.Decimal `db:"retail_price"`
	}

	var rows []pricedRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, from, to); err != nil {
		log.Error().Err(err).Msg("report: failed to fetch priced sales")
		return nil, fmt.Errorf("failed to fetch priced sales: %w", err)
	}

	out := make([]report.PricedSale, len(rows))
	for i, row := range rows {
		out[i] = report.PricedSale{Sale: row.Sale, RetailPrice: row.RetailPrice}
	}
	return out, nil
}

func (r *reportRepository) SalesWindow(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	query := `
        SELECT id, order_number, date, variant_id, sold_quantity, return_quantity,
               sold_value, return_value, referrer_id
        FROM sales
        WHERE date >= $1 AND date <= $2
        ORDER BY date
    `

	var sales []domain.Sale
	if err := sqlx.SelectContext(ctx, r.db, &sales, query, from, to); err != nil {
		log.Error().Err(err).Msg("report: failed to fetch sales window")
		return nil, fmt.Errorf("failed to fetch sales window: %w", err)
	}
	return sales, nil
}
