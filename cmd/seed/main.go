package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with catalog and history data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "catalog",
				Usage:  "Seed catalog data (products, variants, groups, referrers)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runCatalogSeeder,
			},
			{
				Name:   "history",
				Usage:  "Seed history data (snapshots, sales, purchase orders)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runHistorySeeder,
			},
			{
				Name:  "all",
				Usage: "Seed both catalog and history data",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					// Catalog first, history references it
					if err := runCatalogSeeder(c); err != nil {
						return fmt.Errorf("error running catalog seed: %w", err)
					}
					if err := runHistorySeeder(c); err != nil {
						return fmt.Errorf("error running history seed: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCatalogSeeder(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx, dataDir string) error {
		log.Println("Starting catalog seeding...")

		if err := seedProducts(ctx, tx, filepath.Join(dataDir, "products.csv")); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		if err := seedProductTags(ctx, tx, "product_groups", filepath.Join(dataDir, "product_groups.csv")); err != nil {
			return fmt.Errorf("failed to seed product groups: %w", err)
		}
		if err := seedProductTags(ctx, tx, "product_series", filepath.Join(dataDir, "product_series.csv")); err != nil {
			return fmt.Errorf("failed to seed product series: %w", err)
		}
		if err := seedVariants(ctx, tx, filepath.Join(dataDir, "variants.csv")); err != nil {
			return fmt.Errorf("failed to seed variants: %w", err)
		}
		if err := seedReferrers(ctx, tx, filepath.Join(dataDir, "referrers.csv")); err != nil {
			return fmt.Errorf("failed to seed referrers: %w", err)
		}

		log.Println("Catalog seeding completed successfully!")
		return nil
	})
}

func runHistorySeeder(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx, dataDir string) error {
		log.Println("Starting history seeding...")

		if err := seedSnapshots(ctx, tx, filepath.Join(dataDir, "snapshots.csv")); err != nil {
			return fmt.Errorf("failed to seed snapshots: %w", err)
		}
		if err := seedSales(ctx, tx, filepath.Join(dataDir, "sales.csv")); err != nil {
			return fmt.Errorf("failed to seed sales: %w", err)
		}
		if err := seedOrders(ctx, tx, dataDir); err != nil {
			return fmt.Errorf("failed to seed purchase orders: %w", err)
		}

		log.Println("History seeding completed successfully!")
		return nil
	})
}

func withTx(c *cli.Context, fn func(ctx context.Context, tx *sql.Tx, dataDir string) error) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	if err := fn(ctx, tx, c.String("data-dir")); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// seedProducts upserts products.csv keyed by product_code.
//
// Columns: product_code, product_name, retail_price, decommissioned,
// discounted, no_restock, restock_months, style, type, subtype, age
func seedProducts(ctx context.Context, tx *sql.Tx, filePath string) error {
	const query = `
        INSERT INTO products (
            product_code, product_name, retail_price, decommissioned,
            discounted, no_restock, restock_months, style, type, subtype, age
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (product_code) DO UPDATE SET
            product_name = EXCLUDED.product_name,
            retail_price = EXCLUDED.retail_price,
            decommissioned = EXCLUDED.decommissioned,
            discounted = EXCLUDED.discounted,
            no_restock = EXCLUDED.no_restock,
            restock_months = EXCLUDED.restock_months,
            style = EXCLUDED.style,
            type = EXCLUDED.type,
            subtype = EXCLUDED.subtype,
            age = EXCLUDED.age
    `

	return forEachRecord(filePath, "products", func(rec record) error {
		decommissioned, _ := strconv.ParseBool(rec.get("decommissioned"))
		discounted, _ := strconv.ParseBool(rec.get("discounted"))
		noRestock, _ := strconv.ParseBool(rec.get("no_restock"))
		restockMonths, _ := strconv.Atoi(rec.get("restock_months"))

		_, err := tx.ExecContext(ctx, query,
			rec.get("product_code"),
			rec.get("product_name"),
			nullIfEmpty(rec.get("retail_price")),
			decommissioned,
			discounted,
			noRestock,
			restockMonths,
			rec.get("style"),
			rec.get("type"),
			rec.get("subtype"),
			rec.get("age"),
		)
		return err
	})
}

// seedProductTags loads product_groups.csv / product_series.csv rows of
// (product_code, name) into the given join table.
func seedProductTags(ctx context.Context, tx *sql.Tx, tableName, filePath string) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (product_id, name)
        SELECT p.id, $2 FROM products p WHERE p.product_code = $1
        ON CONFLICT (product_id, name) DO NOTHING
    `, tableName)

	return forEachRecord(filePath, tableName, func(rec record) error {
		_, err := tx.ExecContext(ctx, query, rec.get("product_code"), rec.get("name"))
		return err
	})
}

// seedVariants upserts variants.csv keyed by variant_code.
//
// Columns: product_code, variant_code, size, gender, primary_color,
// secondary_color
func seedVariants(ctx context.Context, tx *sql.Tx, filePath string) error {
	const query = `
        INSERT INTO variants (product_id, variant_code, size, gender, primary_color, secondary_color)
        SELECT p.id, $2, $3, $4, $5, $6 FROM products p WHERE p.product_code = $1
        ON CONFLICT (variant_code) DO UPDATE SET
            size = EXCLUDED.size,
            gender = EXCLUDED.gender,
            primary_color = EXCLUDED.primary_color,
            secondary_color = EXCLUDED.secondary_color
    `

	return forEachRecord(filePath, "variants", func(rec record) error {
		_, err := tx.ExecContext(ctx, query,
			rec.get("product_code"),
			rec.get("variant_code"),
			rec.get("size"),
			rec.get("gender"),
			rec.get("primary_color"),
			nullIfEmpty(rec.get("secondary_color")),
		)
		return err
	})
}

func seedReferrers(ctx context.Context, tx *sql.Tx, filePath string) error {
	const query = `INSERT INTO referrers (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`

	return forEachRecord(filePath, "referrers", func(rec record) error {
		_, err := tx.ExecContext(ctx, query, rec.get("name"))
		return err
	})
}

// seedSnapshots upserts snapshots.csv keyed by (variant, date).
//
// Columns: variant_code, date, inventory_count
func seedSnapshots(ctx context.Context, tx *sql.Tx, filePath string) error {
	const query = `
        INSERT INTO inventory_snapshots (variant_id, date, inventory_count)
        SELECT v.id, $2::date, $3 FROM variants v WHERE v.variant_code = $1
        ON CONFLICT (variant_id, date) DO UPDATE SET
            inventory_count = EXCLUDED.inventory_count
    `

	return forEachRecord(filePath, "inventory_snapshots", func(rec record) error {
		count, err := strconv.Atoi(rec.get("inventory_count"))
		if err != nil {
			return fmt.Errorf("invalid inventory_count for %s: %w", rec.get("variant_code"), err)
		}
		_, err = tx.ExecContext(ctx, query, rec.get("variant_code"), rec.get("date"), count)
		return err
	})
}

// seedSales inserts sales.csv lines, resolving the referrer by name.
//
// Columns: order_number, date, variant_code, sold_quantity,
// return_quantity, sold_value, return_value, referrer_name
func seedSales(ctx context.Context, tx *sql.Tx, filePath string) error {
	const query = `
        INSERT INTO sales (
            order_number, date, variant_id, sold_quantity, return_quantity,
            sold_value, return_value, referrer_id
        )
        SELECT $1, $2::date, v.id, $4, $5, $6, $7,
               (SELECT r.id FROM referrers r WHERE r.name = $8)
        FROM variants v WHERE v.variant_code = $3
        ON CONFLICT (order_number, variant_id, date) DO UPDATE SET
            sold_quantity = EXCLUDED.sold_quantity,
            return_quantity = EXCLUDED.return_quantity,
            sold_value = EXCLUDED.sold_value,
            return_value = EXCLUDED.return_value
    `

	return forEachRecord(filePath, "sales", func(rec record) error {
		qty, err := strconv.Atoi(rec.get("sold_quantity"))
		if err != nil {
			return fmt.Errorf("invalid sold_quantity for %s: %w", rec.get("variant_code"), err)
		}
		_, err = tx.ExecContext(ctx, query,
			rec.get("order_number"),
			rec.get("date"),
			rec.get("variant_code"),
			qty,
			nullIfEmpty(rec.get("return_quantity")),
			rec.get("sold_value"),
			nullIfEmpty(rec.get("return_value")),
			nullIfEmpty(rec.get("referrer_name")),
		)
		return err
	})
}

// seedOrders loads orders.csv and order_items.csv together. The order
// ref column only links the two files; it is not stored.
//
// orders.csv:      order_ref, order_date
// order_items.csv: order_ref, variant_code, quantity, actual_quantity,
//
//	item_cost_price, date_expected, date_arrived
func seedOrders(ctx context.Context, tx *sql.Tx, dataDir string) error {
	orderIDs := make(map[string]int64)

	err := forEachRecord(filepath.Join(dataDir, "orders.csv"), "orders", func(rec record) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_date) VALUES ($1::date) RETURNING id`,
			rec.get("order_date"),
		).Scan(&id)
		if err != nil {
			return err
		}
		orderIDs[rec.get("order_ref")] = id
		return nil
	})
	if err != nil {
		return err
	}

	const itemQuery = `
        INSERT INTO order_items (
            order_id, variant_id, quantity, actual_quantity,
            item_cost_price, date_expected, date_arrived
        )
        SELECT $1, v.id, $3, $4, $5, $6::date, $7::date
        FROM variants v WHERE v.variant_code = $2
    `

	return forEachRecord(filepath.Join(dataDir, "order_items.csv"), "order_items", func(rec record) error {
		orderID, ok := orderIDs[rec.get("order_ref")]
		if !ok {
			return fmt.Errorf("order ref %s not found in orders.csv", rec.get("order_ref"))
		}
		qty, err := strconv.Atoi(rec.get("quantity"))
		if err != nil {
			return fmt.Errorf("invalid quantity for %s: %w", rec.get("variant_code"), err)
		}
		_, err = tx.ExecContext(ctx, itemQuery,
			orderID,
			rec.get("variant_code"),
			qty,
			nullIfEmpty(rec.get("actual_quantity")),
			rec.get("item_cost_price"),
			rec.get("date_expected"),
			nullIfEmpty(rec.get("date_arrived")),
		)
		return err
	})
}

// record pairs a CSV row with its header for lookup by column name.
type record struct {
	header []string
	row    []string
}

func (r record) get(column string) string {
	for i, h := range r.header {
		if h == column && i < len(r.row) {
			return strings.TrimSpace(r.row[i])
		}
	}
	return ""
}

func forEachRecord(filePath, tableName string, fn func(rec record) error) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rowCount := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		if err := fn(record{header: header, row: row}); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rowCount+1, err)
		}

		rowCount++
		if rowCount%5000 == 0 {
			log.Printf("Seeded %d %s rows...", rowCount, tableName)
		}
	}

	log.Printf("Successfully seeded %s (%d records)\n", tableName, rowCount)
	return nil
}
