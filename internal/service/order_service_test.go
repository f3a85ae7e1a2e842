package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders        map[int64]domain.Order
	items         map[int64][]domain.OrderItem
	attachErr     error
	attachedID    string
	attachedKey   string
	deliveredItem int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[int64]domain.Order{
			1: {ID: 1, OrderDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		items: map[int64][]domain.OrderItem{
			1: {{ID: 11, OrderID: 1, VariantID: 1, Quantity: 20, DateExpected: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}},
		},
	}
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrder(ctx context.Context, orderID int64) (*domain.Order, []domain.OrderItem, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, nil, domain.ErrOrderNotFound
	}
	return &order, f.items[orderID], nil
}

func (f *fakeOrderRepo) AttachInvoice(ctx context.Context, orderID int64, invoiceID, invoiceKey string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	order := f.orders[orderID]
	order.InvoiceID = &invoiceID
	order.InvoiceKey = &invoiceKey
	f.orders[orderID] = order
	f.attachedID = invoiceID
	f.attachedKey = invoiceKey
	return nil
}

func (f *fakeOrderRepo) MarkDelivered(ctx context.Context, orderItemID int64, arrived time.Time, actualQuantity *int) error {
	f.deliveredItem = orderItemID
	return nil
}

// fakeStorage records uploads and removals in memory.
type fakeStorage struct {
	objects map[string][]byte
	removed []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeStorage) UploadObject(ctx context.Context, key, contentType string, size int64, data io.Reader) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = payload
	return nil
}

func (f *fakeStorage) DownloadObject(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (f *fakeStorage) RemoveObject(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func TestOrderServiceUploadInvoice(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeStorage()
	svc := NewOrderService(repo, store, nil, nil)

	invoiceID, err := svc.UploadInvoice(context.Background(), 1, "march.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)
	require.NotEmpty(t, invoiceID)

	assert.Equal(t, invoiceID, repo.attachedID)
	assert.True(t, strings.HasPrefix(repo.attachedKey, "orders/1/"), "key %q must live under the order's prefix", repo.attachedKey)
	assert.Contains(t, store.objects, repo.attachedKey)
}

func TestOrderServiceUploadInvoiceRollsBackOnAttachFailure(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.attachErr = errors.New("db down")
	store := newFakeStorage()
	svc := NewOrderService(repo, store, nil, nil)

	_, err := svc.UploadInvoice(context.Background(), 1, "march.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.Error(t, err)

	assert.Empty(t, store.objects, "orphaned object must be removed")
	assert.Len(t, store.removed, 1)
}

func TestOrderServiceUploadInvoiceUnknownOrder(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), newFakeStorage(), nil, nil)

	_, err := svc.UploadInvoice(context.Background(), 99, "x.pdf", "application/pdf", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderServiceUploadInvoiceWithoutStorage(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil, nil, nil)

	_, err := svc.UploadInvoice(context.Background(), 1, "x.pdf", "application/pdf", 1, strings.NewReader("x"))
	assert.Error(t, err)
}

func TestOrderServiceInvoiceURL(t *testing.T) {
	repo := newFakeOrderRepo()
	store := newFakeStorage()
	svc := NewOrderService(repo, store, nil, nil)

	// No invoice attached yet
	_, err := svc.InvoiceURL(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	invoiceID, err := svc.UploadInvoice(context.Background(), 1, "march.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)
	require.NotEmpty(t, invoiceID)

	url, err := svc.InvoiceURL(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/"+repo.attachedKey, url)
}

func TestOrderServiceMarkDeliveredFlushesCaches(t *testing.T) {
	repo := newFakeOrderRepo()
	forecastCache := newMemForecastCache()
	reportCache := newMemReportCache()
	svc := NewOrderService(repo, newFakeStorage(), forecastCache, reportCache)

	require.NoError(t, forecastCache.SetSafeStock(context.Background(), "HG-001", nil))

	qty := 18
	err := svc.MarkDelivered(context.Background(), 11, time.Now().UTC(), &qty)
	require.NoError(t, err)

	assert.Equal(t, int64(11), repo.deliveredItem)
	assert.Empty(t, forecastCache.safeStocks)
	assert.Equal(t, 1, reportCache.invalidations)
}
