// Package addons resolves the add-on catalog against a service context and
// tracks selected quantities through explicit toggle/update operations.
package addons

import (
	"fmt"

	"github.com/gleamhq/estimator/internal/models"
)

// Category scopes a catalog entry to a service context. Universal entries
// surface for every context; WindowOnly entries require window services in
// the inbound quote.
type Category string

const (
	CategoryUniversal   Category = "all"
	CategoryWindow      Category = "window"
	CategoryWindowOnly  Category = "window_only"
	CategoryExterior    Category = "exterior"
	CategoryMaintenance Category = "maintenance"
)

// SizeTier is one size option of a multi-size add-on.
type SizeTier struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Price models.Cents `json:"price"`
}

// Definition is one static catalog entry.
type Definition struct {
	ID           string       `json:"id"`
	SKU          string       `json:"sku"`
	Name         string       `json:"name"`
	Sub          string       `json:"sub"`
	Price        models.Cents `json:"price,omitempty"`
	RegularPrice models.Cents `json:"regularPrice,omitempty"`
	DefaultQty   int          `json:"defaultQty,omitempty"`
	Unit         string       `json:"unit,omitempty"`
	Popular      bool         `json:"popular"`
	Editable     bool         `json:"editable"`
	MultiSize    bool         `json:"isMultiSize"`
	Sizes        []SizeTier   `json:"sizes,omitempty"`
	Category     Category     `json:"category"`
}

// SizeFor returns the tier with the given key.
func (d Definition) SizeFor(key string) (SizeTier, bool) {
	for _, s := range d.Sizes {
		if s.Key == key {
			return s, true
		}
	}
	return SizeTier{}, false
}

// Catalog returns the static add-on catalog. Callers receive a fresh slice
// so per-session rewrites (the screen-sealing quantity) never leak across
// sessions.
func Catalog() []Definition {
	return []Definition{
		{
			ID: "dv", SKU: "RES-DRY-CLN", Name: "Dryer Vent Cleaning",
			Sub:   "Prevent fire hazards & save energy.",
			Price: 9900, RegularPrice: 14900, DefaultQty: 1,
			Popular: true, Category: CategoryUniversal,
		},
		{
			ID: "seal", SKU: "RES-SCR-SEL", Name: "Window Screen Sealing",
			Sub:   "UV protection for your screens.",
			Price: 150, RegularPrice: 300, DefaultQty: 1, Unit: "screen",
			Category: CategoryWindowOnly,
		},
		{
			ID: "rescreen", SKU: "RES-SCR-RMD", Name: "Rescreening (Mesh)",
			Sub:       "Replace torn mesh.",
			MultiSize: true, Editable: true, Category: CategoryWindow,
			Sizes: []SizeTier{
				{Key: "small", Label: "Under 5 sq.ft.", Price: 3000},
				{Key: "med", Label: "5-10 sq.ft.", Price: 4000},
				{Key: "large", Label: "10-15 sq.ft.", Price: 5000},
			},
		},
		{
			ID: "frame_build", SKU: "RES-SCR-NEW", Name: "Custom Frame Build",
			Sub:       "Complete frame and mesh fabrication.",
			MultiSize: true, Editable: true, Category: CategoryWindow,
			Sizes: []SizeTier{
				{Key: "small", Label: "Under 5 sq.ft.", Price: 8000},
				{Key: "med", Label: "5-10 sq.ft.", Price: 11000},
				{Key: "large", Label: "10-15 sq.ft.", Price: 14000},
			},
		},
		{
			ID: "window_touchup", SKU: "RES-WIN-TCH", Name: "Exterior Window Wash",
			Sub:   "Remove hard water & runoff spots.",
			Price: 19900, RegularPrice: 24900, DefaultQty: 1,
			Popular: true, Editable: true, Category: CategoryExterior,
		},
		{
			ID: "gutter_flush", SKU: "RES-HMX-GUT", Name: "Gutter Flush",
			Sub:   "Ensure proper drainage.",
			Price: 14900, RegularPrice: 19900, DefaultQty: 1,
			Editable: true, Category: CategoryExterior,
		},
		{
			ID: "walkway_wash", SKU: "RES-EXT-WLK", Name: "Walkway Pressure Wash",
			Sub:   "Boost curb appeal & safety.",
			Price: 12900, RegularPrice: 17900, DefaultQty: 1,
			Popular: true, Editable: true, Category: CategoryMaintenance,
		},
	}
}

// ServiceContext is what the aggregator knows about the inbound quote when
// resolving the catalog: the category tags on the inbound line items and the
// pane-derived screen estimate. Categories are explicit tags assigned at
// line-item creation, not inferred from item names.
type ServiceContext struct {
	Categories     map[models.ItemCategory]bool
	HasScreenClean bool
	ScreenEstimate int
}

// ContextFromLineItems derives a service context from inbound line items.
func ContextFromLineItems(items []models.LineItem, screenEstimate int) ServiceContext {
	ctx := ServiceContext{
		Categories:     make(map[models.ItemCategory]bool, 4),
		ScreenEstimate: screenEstimate,
	}
	for _, it := range items {
		ctx.Categories[it.Category] = true
		if it.SKU == "RES-WIN-SCR" {
			ctx.HasScreenClean = true
		}
	}
	return ctx
}

// dominant picks the single catalog category the inbound quote belongs to.
func (c ServiceContext) dominant() Category {
	if c.Categories[models.CategoryMaintenance] {
		return CategoryMaintenance
	}
	if c.Categories[models.CategoryExterior] {
		return CategoryExterior
	}
	return CategoryWindow
}

// ResolveAvailable filters the catalog for a service context. Universal
// entries always surface. When screen cleaning is already part of the quote,
// the screen-sealing entry is rewritten to default to the pane-derived screen
// count.
func ResolveAvailable(ctx ServiceContext) []Definition {
	category := ctx.dominant()
	available := make([]Definition, 0, 8)

	for _, def := range Catalog() {
		switch {
		case def.Category == CategoryUniversal:
			available = append(available, def)
		case def.ID == "seal" && ctx.HasScreenClean && ctx.ScreenEstimate > 0:
			def.Sub = fmt.Sprintf("UV protection for your %d screens.", ctx.ScreenEstimate)
			def.DefaultQty = ctx.ScreenEstimate
			available = append(available, def)
		case def.Category == Category(category):
			available = append(available, def)
		}
	}
	return available
}
