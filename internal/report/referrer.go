// internal/report/referrer.go
package report

import (
	"sort"

	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ReferrerSummary is one referrer's attributed sales over the report
// window. Orders counts distinct order numbers, not lines.
type ReferrerSummary struct {
	ReferrerID   int64           `json:"referrer_id"`
	ReferrerName string          `json:"referrer_name"`
	Orders       int             `json:"orders"`
	Units        int             `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	GiftedUnits  int             `json:"gifted_units"`
}

// ReferrerSummaries rolls sales up per referrer, sorted by revenue
// descending. Sales with no referrer are skipped; the caller reports
// unattributed revenue separately if it wants it.
func ReferrerSummaries(referrers []domain.Referrer, sales []domain.Sale) []ReferrerSummary {
	names := make(map[int64]string, len(referrers))
	for _, r := range referrers {
		names[r.ID] = r.Name
	}

	byID := make(map[int64]*ReferrerSummary)
	orders := make(map[int64]map[string]struct{})
	for _, s := range sales {
		if s.ReferrerID == nil {
			continue
		}
		id := *s.ReferrerID
		entry, ok := byID[id]
		if !ok {
			entry = &ReferrerSummary{ReferrerID: id, ReferrerName: names[id], Revenue: decimal.Zero}
			byID[id] = entry
			orders[id] = make(map[string]struct{})
		}
		entry.Units += s.SoldQuantity
		entry.Revenue = entry.Revenue.Add(s.SoldValue)
		if s.SoldQuantity > 0 && s.SoldValue.IsZero() {
			entry.GiftedUnits += s.SoldQuantity
		}
		orders[id][s.OrderNumber] = struct{}{}
	}

	out := make([]ReferrerSummary, 0, len(byID))
	for id, entry := range byID {
		entry.Orders = len(orders[id])
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ReferrerID < out[j].ReferrerID
	})
	return out
}
