package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type catalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a postgres-backed catalog repository.
func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filterClause, args := buildProductFilterClause(filter, "p.", 1)

	query := fmt.Sprintf(`
        SELECT p.id, p.product_code, p.product_name, p.retail_price,
               p.decommissioned, p.discounted, p.no_restock, p.restock_months,
               p.style, p.type, p.subtype, p.age
        FROM products p
        WHERE TRUE %s
        ORDER BY p.product_code
    `, filterClause)

	var products []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query, args...); err != nil {
		log.Error().Err(err).Msg("catalog: failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if err := r.attachGroupsAndSeries(ctx, products); err != nil {
		return nil, err
	}

	log.Debug().Int("products", len(products)).Msg("catalog: products listed")
	return products, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, productCode string) (*domain.Product, error) {
	query := `
        SELECT p.id, p.product_code, p.product_name, p.retail_price,
               p.decommissioned, p.discounted, p.no_restock, p.restock_months,
               p.style, p.type, p.subtype, p.age
        FROM products p
        WHERE p.product_code = $1
    `

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, productCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		log.Error().Err(err).Str("product_code", productCode).Msg("catalog: failed to get product")
		return nil, fmt.Errorf("failed to get product %s: %w", productCode, err)
	}

	products := []domain.Product{product}
	if err := r.attachGroupsAndSeries(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *catalogRepository) ListVariants(ctx context.Context, productCode string) ([]domain.Variant, error) {
	query := `
        SELECT v.id, v.product_id, v.variant_code, v.size, v.gender,
               v.primary_color, v.secondary_color
        FROM variants v
        JOIN products p ON p.id = v.product_id
        WHERE p.product_code = $1
        ORDER BY v.variant_code
    `

	var variants []domain.Variant
	if err := sqlx.SelectContext(ctx, r.db, &variants, query, productCode); err != nil {
		log.Error().Err(err).Str("product_code", productCode).Msg("catalog: failed to list variants")
		return nil, fmt.Errorf("failed to list variants for %s: %w", productCode, err)
	}
	return variants, nil
}

func (r *catalogRepository) ListReferrers(ctx context.Context) ([]domain.Referrer, error) {
	var referrers []domain.Referrer
	if err := sqlx.SelectContext(ctx, r.db, &referrers, `SELECT id, name FROM referrers ORDER BY name`); err != nil {
		log.Error().Err(err).Msg("catalog: failed to list referrers")
		return nil, fmt.Errorf("failed to list referrers: %w", err)
	}
	return referrers, nil
}

func (r *catalogRepository) ReassignReferrer(ctx context.Context, saleIDs []int64, referrerID int64) (int64, error) {
	if len(saleIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE sales SET referrer_id = ? WHERE id IN (?)`, referrerID, saleIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to build referrer update: %w", err)
	}
	query = r.db.Rebind(query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Int64("referrer_id", referrerID).Msg("catalog: failed to reassign referrer")
		return 0, fmt.Errorf("failed to reassign referrer: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	log.Info().
		Int64("referrer_id", referrerID).
		Int64("updated", updated).
		Msg("catalog: sales reassigned to referrer")
	return updated, nil
}

type productTagRow struct {
	ProductID int64  `db:"product_id"`
	Name      string `db:"name"`
}

// attachGroupsAndSeries fills the Groups and Series slices from their
// join tables in one query each.
func (r *catalogRepository) attachGroupsAndSeries(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[int64]*domain.Product, len(products))
	ids := make([]int64, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
		ids[i] = products[i].ID
	}

	for _, table := range []string{"product_groups", "product_series"} {
		query, args, err := sqlx.In(
			fmt.Sprintf(`SELECT product_id, name FROM %s WHERE product_id IN (?) ORDER BY name`, table), ids)
		if err != nil {
			return fmt.Errorf("failed to build %s query: %w", table, err)
		}
		query = r.db.Rebind(query)

		var rows []productTagRow
		if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
			return fmt.Errorf("failed to load %s: %w", table, err)
		}
		for _, row := range rows {
			p := index[row.ProductID]
			if p == nil {
				continue
			}
			if table == "product_groups" {
				p.Groups = append(p.Groups, row.Name)
			} else {
				p.Series = append(p.Series, row.Name)
			}
		}
	}
	return nil
}

// buildProductFilterClause constructs SQL filter clauses for catalog queries
func buildProductFilterClause(filter domain.ProductFilter, alias string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if !filter.IncludeDecommissioned {
		clauses = append(clauses, fmt.Sprintf("%sdecommissioned = FALSE", alias))
	}
	if filter.Style != "" {
		clauses = append(clauses, fmt.Sprintf("%sstyle = $%d", alias, idx))
		args = append(args, filter.Style)
		idx++
	}
	if filter.Type != "" {
		clauses = append(clauses, fmt.Sprintf("%stype = $%d", alias, idx))
		args = append(args, filter.Type)
		idx++
	}
	if filter.Subtype != "" {
		clauses = append(clauses, fmt.Sprintf("%ssubtype = $%d", alias, idx))
		args = append(args, filter.Subtype)
		idx++
	}
	if filter.Age != "" {
		clauses = append(clauses, fmt.Sprintf("%sage = $%d", alias, idx))
		args = append(args, filter.Age)
		idx++
	}
	if len(filter.Groups) > 0 {
		placeholders := make([]string, len(filter.Groups))
		for i, g := range filter.Groups {
			placeholders[i] = fmt.Sprintf("$%d", idx)
			args = append(args, g)
			idx++
		}
		clauses = append(clauses, fmt.Sprintf(
			"%sid IN (SELECT product_id FROM product_groups WHERE name IN (%s))",
			alias, strings.Join(placeholders, ",")))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}
