// internal/service/order_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hoshigear/inventory-api/internal/cache"
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository"
	"github.com/hoshigear/inventory-api/internal/storage"
	"github.com/rs/zerolog/log"
)

const invoiceURLExpiry = 15 * time.Minute

// OrderService manages purchase orders, deliveries and their archived
// invoices.
type OrderService struct {
	orders        repository.OrderRepository
	store         storage.ObjectStorage
	forecastCache cache.ForecastCache
	reportCache   cache.ReportCache
}

func NewOrderService(orders repository.OrderRepository, store storage.ObjectStorage, forecastCache cache.ForecastCache, reportCache cache.ReportCache) *OrderService {
	if forecastCache == nil {
		forecastCache = cache.NewNoopForecastCache()
	}
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	return &OrderService{orders: orders, store: store, forecastCache: forecastCache, reportCache: reportCache}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, []domain.OrderItem, error) {
	return s.orders.GetOrder(ctx, orderID)
}

// UploadInvoice stores an invoice document and links it to the order.
func (s *OrderService) UploadInvoice(ctx context.Context, orderID int64, filename, contentType string, size int64, data io.Reader) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("invoice storage is not configured")
	}

	if _, _, err := s.orders.GetOrder(ctx, orderID); err != nil {
		return "", err
	}

	invoiceID := uuid.NewString()
	key := fmt.Sprintf("orders/%d/%s-%s", orderID, invoiceID, filename)

	if err := s.store.UploadObject(ctx, key, contentType, size, data); err != nil {
		return "", err
	}
	if err := s.orders.AttachInvoice(ctx, orderID, invoiceID, key); err != nil {
		// Orphaned object; removal is best effort.
		if rmErr := s.store.RemoveObject(ctx, key); rmErr != nil {
			log.Warn().Err(rmErr).Str("key", key).Msg("orders: failed to remove orphaned invoice object")
		}
		return "", err
	}

	log.Info().Int64("order_id", orderID).Str("invoice_id", invoiceID).Msg("orders: invoice uploaded")
	return invoiceID, nil
}

// InvoiceURL returns a short-lived download link for an order's
// invoice.
func (s *OrderService) InvoiceURL(ctx context.Context, orderID int64) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("invoice storage is not configured")
	}

	order, _, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.InvoiceKey == nil {
		return "", domain.ErrOrderNotFound
	}
	return s.store.PresignedGetURL(ctx, *order.InvoiceKey, invoiceURLExpiry)
}

// MarkDelivered records an order line's arrival and flushes the caches
// whose numbers it changes.
func (s *OrderService) MarkDelivered(ctx context.Context, orderItemID int64, arrived time.Time, actualQuantity *int) error {
	if err := s.orders.MarkDelivered(ctx, orderItemID, arrived, actualQuantity); err != nil {
		return err
	}

	// The delivery shifts projections for the affected product, and the
	// item is keyed by variant, so flush broadly rather than resolving
	// variant to product here.
	if err := s.forecastCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("orders: forecast cache invalidation after delivery failed")
	}
	if err := s.reportCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("orders: report cache invalidation after delivery failed")
	}
	return nil
}
