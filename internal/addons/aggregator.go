package addons

import (
	"sort"
	"strings"

	"github.com/gleamhq/estimator/internal/models"
)

// multiSizeSavingsRate is the flat savings fraction applied to multi-size
// add-ons, which carry no regular-price field.
const multiSizeSavingsRate = 0.10

// Selection is the quantity state of one selected add-on: either a scalar
// quantity or a per-size-key quantity map for multi-size entries.
type Selection struct {
	Qty   int            `json:"qty,omitempty"`
	Sizes map[string]int `json:"sizes,omitempty"`
}

// Totals is the money roll-up of the current selection.
type Totals struct {
	Price   models.Cents `json:"price"`
	Savings models.Cents `json:"savings"`
}

// Aggregator tracks selected add-on quantities for a single session. It is
// not safe for concurrent use; the design assumes one instance per session.
type Aggregator struct {
	ctx       ServiceContext
	available []Definition
	selected  map[string]*Selection
}

// NewAggregator builds an aggregator for the given service context.
func NewAggregator(ctx ServiceContext) *Aggregator {
	return &Aggregator{
		ctx:       ctx,
		available: ResolveAvailable(ctx),
		selected:  make(map[string]*Selection),
	}
}

// Available returns the resolved catalog for this session.
func (a *Aggregator) Available() []Definition {
	return a.available
}

// Selected returns the current selection state keyed by add-on id.
func (a *Aggregator) Selected() map[string]Selection {
	out := make(map[string]Selection, len(a.selected))
	for id, sel := range a.selected {
		dup := *sel
		if sel.Sizes != nil {
			dup.Sizes = make(map[string]int, len(sel.Sizes))
			for k, v := range sel.Sizes {
				dup.Sizes[k] = v
			}
		}
		out[id] = dup
	}
	return out
}

// definition looks up an available catalog entry by id.
func (a *Aggregator) definition(id string) (Definition, bool) {
	for _, def := range a.available {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Toggle flips the selection state of an add-on. Absent ids are added with
// their default quantity (or a zeroed-but-seeded size map); present ids are
// removed. A pair of Toggle calls restores the prior state exactly.
func (a *Aggregator) Toggle(id string) {
	if _, ok := a.selected[id]; ok {
		delete(a.selected, id)
		return
	}

	def, ok := a.definition(id)
	if !ok {
		return
	}

	if def.MultiSize {
		sizes := make(map[string]int, len(def.Sizes))
		for _, s := range def.Sizes {
			sizes[s.Key] = 0
		}
		// Seed the middle tier so a freshly toggled multi-size add-on is
		// never an empty selection.
		if _, ok := sizes["med"]; ok {
			sizes["med"] = 1
		}
		a.selected[id] = &Selection{Sizes: sizes}
		return
	}

	qty := def.DefaultQty
	if qty < 1 {
		qty = 1
	}
	a.selected[id] = &Selection{Qty: qty}
}

// Restore replaces the selection state wholesale, applying the same clamping
// rules as Toggle/UpdateQuantity. Used to rebuild a session's aggregator from
// a client-held selection between stateless requests. Unknown ids and size
// keys are dropped.
func (a *Aggregator) Restore(selection map[string]Selection) {
	a.selected = make(map[string]*Selection, len(selection))
	for id, sel := range selection {
		def, ok := a.definition(id)
		if !ok {
			continue
		}

		if def.MultiSize {
			sizes := make(map[string]int, len(def.Sizes))
			for _, tier := range def.Sizes {
				qty := sel.Sizes[tier.Key]
				if qty < 0 {
					qty = 0
				}
				sizes[tier.Key] = qty
			}
			a.selected[id] = &Selection{Sizes: sizes}
			continue
		}

		qty := sel.Qty
		if qty < 1 {
			qty = 1
		}
		a.selected[id] = &Selection{Qty: qty}
	}
}

// UpdateQuantity adjusts a selected add-on by delta. Scalar quantities clamp
// to a minimum of 1 once selected; multi-size quantities clamp to 0 per size.
// Updates to unselected ids or unknown size keys are ignored.
func (a *Aggregator) UpdateQuantity(id string, delta int, sizeKey string) {
	sel, ok := a.selected[id]
	if !ok {
		return
	}

	if sel.Sizes != nil && sizeKey != "" {
		current, ok := sel.Sizes[sizeKey]
		if !ok {
			return
		}
		next := current + delta
		if next < 0 {
			next = 0
		}
		sel.Sizes[sizeKey] = next
		return
	}

	next := sel.Qty + delta
	if next < 1 {
		next = 1
	}
	sel.Qty = next
}

// ComputeTotals sums price and savings across the selection. Multi-size
// savings are a flat fraction of price since those entries carry no regular
// price.
func (a *Aggregator) ComputeTotals() Totals {
	var t Totals
	for id, sel := range a.selected {
		def, ok := a.definition(id)
		if !ok {
			continue
		}

		if def.MultiSize {
			for key, qty := range sel.Sizes {
				tier, ok := def.SizeFor(key)
				if !ok || qty == 0 {
					continue
				}
				price := tier.Price * models.Cents(qty)
				t.Price += price
				t.Savings += models.Cents(float64(price) * multiSizeSavingsRate)
			}
			continue
		}

		t.Price += def.Price * models.Cents(sel.Qty)
		t.Savings += (def.RegularPrice - def.Price) * models.Cents(sel.Qty)
	}
	return t
}

// LineItems renders the selection as outbound payload rows: one row per
// scalar add-on, one row per non-zero size tier for multi-size add-ons.
// Rows are ordered by add-on id for deterministic payloads.
func (a *Aggregator) LineItems() []models.PayloadLineItem {
	ids := make([]string, 0, len(a.selected))
	for id := range a.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]models.PayloadLineItem, 0, len(ids))
	for _, id := range ids {
		sel := a.selected[id]
		def, ok := a.definition(id)
		if !ok {
			continue
		}

		if def.MultiSize {
			for _, tier := range def.Sizes {
				qty := sel.Sizes[tier.Key]
				if qty == 0 {
					continue
				}
				items = append(items, models.PayloadLineItem{
					Name:     def.Name + " (" + tier.Label + ")",
					Qty:      qty,
					Price:    tier.Price.Dollars(),
					SKU:      def.SKU + "-" + strings.ToUpper(tier.Key),
					ManHours: "N/A",
				})
			}
			continue
		}

		items = append(items, models.PayloadLineItem{
			Name:     def.Name,
			Qty:      sel.Qty,
			Price:    def.Price.Dollars(),
			SKU:      def.SKU,
			ManHours: "N/A",
		})
	}
	return items
}
