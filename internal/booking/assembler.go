// Package booking assembles the final booking contract and talks to the
// external scheduling webhooks.
package booking

import (
	"fmt"
	"math"

	"github.com/gleamhq/estimator/internal/addons"
	"github.com/gleamhq/estimator/internal/models"
)

// waivedSetupFee is the logistics fee folded into the savings line on every
// booked bundle.
const waivedSetupFee models.Cents = 6000

// payloadSource tags the outbound contract with the producing system.
const payloadSource = "Gleam Central Booking Hub"

// AssemblyInput is everything the assembler needs to build one payload.
type AssemblyInput struct {
	Handoff     models.HandoffRecord
	AddonItems  []models.PayloadLineItem
	AddonTotals addons.Totals
	Contact     models.Contact
	Address     string
	Attribution models.MarketingAttribution
	Slot        models.Slot
}

// Assemble merges inbound line items, resolved add-on rows, and a synthetic
// bundle-savings row into the outbound booking contract. Pure and
// side-effect-free; total_price is base plus add-on price, with the savings
// row informational only.
func Assemble(in AssemblyInput) models.BookingPayload {
	items := make([]models.PayloadLineItem, 0, len(in.Handoff.LineItems)+len(in.AddonItems)+1)

	for _, li := range in.Handoff.LineItems {
		items = append(items, models.PayloadLineItem{
			Name:     li.Name,
			Qty:      1,
			Price:    li.Cost.Dollars(),
			SKU:      orUnknown(li.SKU),
			ManHours: formatMinutes(li.TimeMinutes),
		})
	}

	items = append(items, in.AddonItems...)

	totalSavings := in.AddonTotals.Savings + waivedSetupFee + in.Handoff.Savings
	if totalSavings > 0 {
		items = append(items, models.PayloadLineItem{
			Name:     "Bundle Savings",
			Qty:      1,
			Price:    -totalSavings.Dollars(),
			SKU:      "PROMO-BUN-DIS",
			ManHours: "Included",
		})
	}

	tag := in.Slot.Tag
	if tag == "" {
		tag = "Standard"
	}

	basePrice := in.Handoff.RawTotal
	totalPrice := basePrice + in.AddonTotals.Price

	return models.BookingPayload{
		Contact:     in.Contact,
		Address:     in.Address,
		Attribution: in.Attribution,
		Booking: models.BookingSlot{
			Date:   in.Slot.Day,
			Window: in.Slot.Window,
			Tag:    tag,
		},
		Details: models.BookingDetails{
			Panes:      in.Handoff.Panes,
			HomeSize:   fmt.Sprintf("%d sq ft", in.Handoff.Sqft),
			OnsiteTime: formatMinutes(in.Handoff.OnsiteMinutes),
		},
		Financials: models.Financials{
			BasePrice:  basePrice.Dollars(),
			TotalPrice: totalPrice.Dollars(),
			Savings:    totalSavings.Dollars(),
		},
		LineItems: items,
		Source:    payloadSource,
	}
}

func orUnknown(sku string) string {
	if sku == "" {
		return "UNKNOWN"
	}
	return sku
}

// formatMinutes renders a duration as "1h 20m" or "45m".
func formatMinutes(minutes float64) string {
	m := math.Round(minutes)
	if m > 60 {
		return fmt.Sprintf("%dh %dm", int(m)/60, int(m)%60)
	}
	return fmt.Sprintf("%dm", int(m))
}
