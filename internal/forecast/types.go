// internal/forecast/types.go
package forecast

import (
	"sort"
	"time"

	"github.com/hoshigear/inventory-api/internal/domain"
)

// VariantHistory is the materialized per-variant dataset every
// forecasting computation works from. It is fetched once per request
// and shared across the velocity, projection and scoring passes so a
// single scoring call never sees two different views of the data.
type VariantHistory struct {
	Variant    domain.Variant
	Snapshots  []domain.InventorySnapshot // ascending by date
	Sales      []domain.Sale              // ascending by date
	OrderItems []domain.OrderItem
}

// NewVariantHistory sorts the inputs so the lookup helpers can rely on
// date order.
func NewVariantHistory(v domain.Variant, snapshots []domain.InventorySnapshot, sales []domain.Sale, items []domain.OrderItem) *VariantHistory {
	h := &VariantHistory{Variant: v, Snapshots: snapshots, Sales: sales, OrderItems: items}
	sort.Slice(h.Snapshots, func(i, j int) bool { return h.Snapshots[i].Date.Before(h.Snapshots[j].Date) })
	sort.Slice(h.Sales, func(i, j int) bool { return h.Sales[i].Date.Before(h.Sales[j].Date) })
	return h
}

// StockOn returns the on-hand count from the most recent snapshot at or
// before asOf. The second return is false when no snapshot exists yet:
// stock is unknown, not zero.
func (h *VariantHistory) StockOn(asOf time.Time) (int, bool) {
	count, _, ok := h.snapshotOn(asOf)
	return count, ok
}

// LatestSnapshot returns the count and date of the most recent snapshot
// at or before asOf.
func (h *VariantHistory) LatestSnapshot(asOf time.Time) (int, time.Time, bool) {
	return h.snapshotOn(asOf)
}

func (h *VariantHistory) snapshotOn(asOf time.Time) (int, time.Time, bool) {
	// Snapshots are ascending; binary-search the first one after asOf.
	idx := sort.Search(len(h.Snapshots), func(i int) bool {
		return h.Snapshots[i].Date.After(asOf)
	})
	if idx == 0 {
		return 0, time.Time{}, false
	}
	snap := h.Snapshots[idx-1]
	return snap.Count, snap.Date, true
}

// SoldBetween sums sold quantities for sales with from <= date <= to.
func (h *VariantHistory) SoldBetween(from, to time.Time) int {
	total := 0
	for _, s := range h.Sales {
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		total += s.SoldQuantity
	}
	return total
}

// ReturnedBetween sums return quantities for sales with
// from <= date <= to.
func (h *VariantHistory) ReturnedBetween(from, to time.Time) int {
	total := 0
	for _, s := range h.Sales {
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		if s.ReturnQuantity != nil {
			total += *s.ReturnQuantity
		}
	}
	return total
}

// monthOf truncates t to the first day of its month.
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthKey renders a month as YYYY-MM for chart axes and map keys.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
