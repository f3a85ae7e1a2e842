package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a postgres-backed order repository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query := `
        SELECT id, order_date, invoice_id, invoice_key
        FROM orders
        ORDER BY order_date DESC
    `

	var orders []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, query); err != nil {
		log.Error().Err(err).Msg("orders: failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, []domain.OrderItem, error) {
	var order domain.Order
	err := r.db.GetContext(ctx, &order,
		`SELECT id, order_date, invoice_id, invoice_key FROM orders WHERE id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("orders: failed to get order")
		return nil, nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	var items []domain.OrderItem
	err = sqlx.SelectContext(ctx, r.db, &items, `
        SELECT id, order_id, variant_id, quantity, actual_quantity, item_cost_price,
               date_expected, date_arrived
        FROM order_items
        WHERE order_id = $1
        ORDER BY date_expected
    `, orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("orders: failed to get order items")
		return nil, nil, fmt.Errorf("failed to get items for order %d: %w", orderID, err)
	}

	return &order, items, nil
}

func (r *orderRepository) AttachInvoice(ctx context.Context, orderID int64, invoiceID, invoiceKey string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET invoice_id = $1, invoice_key = $2 WHERE id = $3`,
		invoiceID, invoiceKey, orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("orders: failed to attach invoice")
		return fmt.Errorf("failed to attach invoice to order %d: %w", orderID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	log.Info().Int64("order_id", orderID).Str("invoice_id", invoiceID).Msg("orders: invoice attached")
	return nil
}

func (r *orderRepository) MarkDelivered(ctx context.Context, orderItemID int64, arrived time.Time, actualQuantity *int) error {
	// Arrival is a one-way transition; already-delivered lines are left
	// alone.
	result, err := r.db.ExecContext(ctx, `
        UPDATE order_items
        SET date_arrived = $1, actual_quantity = COALESCE($2, actual_quantity)
        WHERE id = $3 AND date_arrived IS NULL
    `, arrived, actualQuantity, orderItemID)
	if err != nil {
		log.Error().Err(err).Int64("order_item_id", orderItemID).Msg("orders: failed to mark item delivered")
		return fmt.Errorf("failed to mark order item %d delivered: %w", orderItemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	log.Info().Int64("order_item_id", orderItemID).Time("arrived", arrived).Msg("orders: item marked delivered")
	return nil
}
