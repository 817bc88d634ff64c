package models

// PricingBand identifies one of the three parallel pricing computations.
// The bands differ only in their density constants; together they produce the
// quoted price range.
type PricingBand string

const (
	BandLow  PricingBand = "low"
	BandMid  PricingBand = "mid"
	BandHigh PricingBand = "high"
)

// ServiceSelection captures which core window services the customer picked.
type ServiceSelection struct {
	Exterior bool `json:"exterior"`
	Interior bool `json:"interior"`
	Screens  bool `json:"screens"`
	Tracks   bool `json:"tracks"`
	Sealing  bool `json:"sealing"`
}

// Count returns the number of distinct services for discount purposes.
// The interior package always rides on top of exterior, so it counts as two.
func (s ServiceSelection) Count() int {
	n := 1
	if s.Interior {
		n = 2
	}
	if s.Screens {
		n++
	}
	if s.Tracks {
		n++
	}
	return n
}

// ItemCategory is an explicit tag attached to every line item at creation
// time. Downstream add-on filtering keys off this tag rather than matching
// substrings in item names.
type ItemCategory string

const (
	CategoryWindow      ItemCategory = "window"
	CategoryExterior    ItemCategory = "exterior"
	CategoryMaintenance ItemCategory = "maintenance"
	CategoryLogistics   ItemCategory = "logistics"
)

// LineItem is one row of an itemized quote.
type LineItem struct {
	Name        string       `json:"name"`
	Sub         string       `json:"sub,omitempty"`
	SKU         string       `json:"sku"`
	Category    ItemCategory `json:"category"`
	Cost        Cents        `json:"cost"`
	TimeMinutes float64      `json:"timeMinutes"`
}

// BandQuote is the cost breakdown of a single band computation.
type BandQuote struct {
	Total     Cents `json:"total"`
	Exterior  Cents `json:"exterior"`
	Interior  Cents `json:"interior"`
	Skylights Cents `json:"skylights"`
	Screens   Cents `json:"screens"`
	Tracks    Cents `json:"tracks"`
	Sealing   Cents `json:"sealing"`
	Logistics Cents `json:"logistics"`
}

// EstimateResult is the immutable snapshot produced once per estimation
// request and consumed downstream by the booking hub.
type EstimateResult struct {
	PriceLow      Cents      `json:"priceLow"`
	PriceMid      Cents      `json:"priceMid"`
	PriceHigh     Cents      `json:"priceHigh"`
	RawTotal      Cents      `json:"rawTotal"`
	Discount      float64    `json:"discount"`
	Panes         int        `json:"panes"`
	ScreenCount   int        `json:"screenCount"`
	LineItems     []LineItem `json:"lineItems"`
	OnsiteMinutes float64    `json:"onsiteMinutes"`
	Reconciled    bool       `json:"reconciled"`
}
