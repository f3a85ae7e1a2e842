package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type historyRepository struct {
	db      *DB
	catalog repository.CatalogRepository
}

// NewHistoryRepository creates a postgres-backed history repository.
func NewHistoryRepository(db *DB, catalog repository.CatalogRepository) repository.HistoryRepository {
	return &historyRepository{db: db, catalog: catalog}
}

func (r *historyRepository) ProductHistory(ctx context.Context, productCode string) (*repository.ProductData, error) {
	product, err := r.catalog.GetProduct(ctx, productCode)
	if err != nil {
		return nil, err
	}

	data, err := r.loadHistories(ctx, []domain.Product{*product})
	if err != nil {
		return nil, err
	}
	return &data[0], nil
}

func (r *historyRepository) ProductHistories(ctx context.Context, filter domain.ProductFilter) ([]repository.ProductData, error) {
	products, err := r.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return r.loadHistories(ctx, products)
}

func (r *historyRepository) StoreAggregate(ctx context.Context, from, to time.Time) (*domain.SalesAggregate, error) {
	// Cost is approximated from each variant's average purchase price;
	// variants never restocked contribute no cost.
	query := `
        SELECT
            COALESCE(SUM(s.sold_quantity), 0) AS total_sold,
            COALESCE(SUM(s.return_quantity), 0) AS total_returned,
            COALESCE(SUM(s.sold_value), 0) AS total_value,
            COALESCE(SUM(s.sold_quantity * p.retail_price), 0) AS total_retail,
            COALESCE(SUM(s.sold_quantity * c.avg_cost), 0) AS total_cost,
            COUNT(DISTINCT s.variant_id) AS variant_count
        FROM sales s
        JOIN variants v ON v.id = s.variant_id
        JOIN products p ON p.id = v.product_id
        LEFT JOIN (
            SELECT variant_id, AVG(item_cost_price) AS avg_cost
            FROM order_items
            GROUP BY variant_id
        ) c ON c.variant_id = s.variant_id
        WHERE s.date >= $1 AND s.date <= $2
    `

	var agg domain.SalesAggregate
	if err := r.db.GetContext(ctx, &agg, query, from, to); err != nil {
		log.Error().Err(err).Msg("history: failed to fetch store aggregate")
		return nil, fmt.Errorf("failed to fetch store aggregate: %w", err)
	}
	return &agg, nil
}

// loadHistories fetches snapshots, sales and order items for every
// variant of the given products in three bulk queries and fans them out
// per variant in memory.
func (r *historyRepository) loadHistories(ctx context.Context, products []domain.Product) ([]repository.ProductData, error) {
	if len(products) == 0 {
		return nil, nil
	}

	productIDs := make([]int64, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	variants, err := r.variantsByProduct(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	variantIDs := make([]int64, 0)
	for _, vs := range variants {
		for _, v := range vs {
			variantIDs = append(variantIDs, v.ID)
		}
	}

	snapshots := make(map[int64][]domain.InventorySnapshot)
	sales := make(map[int64][]domain.Sale)
	items := make(map[int64][]domain.OrderItem)
	if len(variantIDs) > 0 {
		if snapshots, err = r.snapshotsByVariant(ctx, variantIDs); err != nil {
			return nil, err
		}
		if sales, err = r.salesByVariant(ctx, variantIDs); err != nil {
			return nil, err
		}
		if items, err = r.orderItemsByVariant(ctx, variantIDs); err != nil {
			return nil, err
		}
	}

	data := make([]repository.ProductData, len(products))
	for i, p := range products {
		pd := repository.ProductData{Product: p}
		for _, v := range variants[p.ID] {
			pd.Variants = append(pd.Variants, repository.VariantData{
				Variant:    v,
				Snapshots:  snapshots[v.ID],
				Sales:      sales[v.ID],
				OrderItems: items[v.ID],
			})
		}
		data[i] = pd
	}

	log.Debug().
		Int("products", len(products)).
		Int("variants", len(variantIDs)).
		Msg("history: product histories loaded")
	return data, nil
}

func (r *historyRepository) variantsByProduct(ctx context.Context, productIDs []int64) (map[int64][]domain.Variant, error) {
	query, args, err := sqlx.In(`
        SELECT id, product_id, variant_code, size, gender, primary_color, secondary_color
        FROM variants
        WHERE product_id IN (?)
        ORDER BY variant_code
    `, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build variants query: %w", err)
	}

	var rows []domain.Variant
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		log.Error().Err(err).Msg("history: failed to fetch variants")
		return nil, fmt.Errorf("failed to fetch variants: %w", err)
	}

	out := make(map[int64][]domain.Variant, len(productIDs))
	for _, v := range rows {
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, nil
}

func (r *historyRepository) snapshotsByVariant(ctx context.Context, variantIDs []int64) (map[int64][]domain.InventorySnapshot, error) {
	query, args, err := sqlx.In(`
        SELECT id, variant_id, date, inventory_count
        FROM inventory_snapshots
        WHERE variant_id IN (?)
        ORDER BY variant_id, date
    `, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshots query: %w", err)
	}

	var rows []domain.InventorySnapshot
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		log.Error().Err(err).Msg("history: failed to fetch snapshots")
		return nil, fmt.Errorf("failed to fetch snapshots: %w", err)
	}

	out := make(map[int64][]domain.InventorySnapshot)
	for _, s := range rows {
		out[s.VariantID] = append(out[s.VariantID], s)
	}
	return out, nil
}

func (r *historyRepository) salesByVariant(ctx context.Context, variantIDs []int64) (map[int64][]domain.Sale, error) {
	query, args, err := sqlx.In(`
        SELECT id, order_number, date, variant_id, sold_quantity, return_quantity,
               sold_value, return_value, referrer_id
        FROM sales
        WHERE variant_id IN (?)
        ORDER BY variant_id, date
    `, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales query: %w", err)
	}

	var rows []domain.Sale
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		log.Error().Err(err).Msg("history: failed to fetch sales")
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	out := make(map[int64][]domain.Sale)
	for _, s := range rows {
		out[s.VariantID] = append(out[s.VariantID], s)
	}
	return out, nil
}

func (r *historyRepository) orderItemsByVariant(ctx context.Context, variantIDs []int64) (map[int64][]domain.OrderItem, error) {
	query, args, err := sqlx.In(`
        SELECT id, order_id, variant_id, quantity, actual_quantity, item_cost_price,
               date_expected, date_arrived
        FROM order_items
        WHERE variant_id IN (?)
        ORDER BY variant_id, date_expected
    `, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build order items query: %w", err)
	}

	var rows []domain.OrderItem
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		log.Error().Err(err).Msg("history: failed to fetch order items")
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}

	out := make(map[int64][]domain.OrderItem)
	for _, oi := range rows {
		out[oi.VariantID] = append(out[oi.VariantID], oi)
	}
	return out, nil
}
