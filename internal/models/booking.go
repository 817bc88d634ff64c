package models

// Contact holds customer contact fields for booking submission.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// MarketingAttribution carries UTM-style campaign tracking data.
type MarketingAttribution struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
}

// Slot is one bookable arrival window returned by the availability service.
type Slot struct {
	ID     string `json:"id"`
	Day    string `json:"day"`
	Window string `json:"window"`
	Tag    string `json:"tag"`
}

// PayloadLineItem is one row of the outbound booking contract.
type PayloadLineItem struct {
	Name     string  `json:"name"`
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
	SKU      string  `json:"sku"`
	ManHours string  `json:"man_hours"`
}

// BookingDetails summarizes the job for the field crew.
type BookingDetails struct {
	Panes      int    `json:"panes"`
	HomeSize   string `json:"homeSize"`
	OnsiteTime string `json:"onsiteTime"`
}

// Financials is the money roll-up of the booking contract. TotalPrice is the
// inbound base price plus add-on price; the savings line item is informational
// and is not subtracted again.
type Financials struct {
	BasePrice  float64 `json:"base_price"`
	TotalPrice float64 `json:"total_price"`
	Savings    float64 `json:"savings"`
}

// BookingPayload is the final outbound booking contract. It is built once,
// immutable, and submitted exactly once per booking attempt.
type BookingPayload struct {
	Contact     Contact              `json:"contact"`
	Address     string               `json:"address"`
	Attribution MarketingAttribution `json:"marketing_attribution"`
	Booking     BookingSlot          `json:"booking"`
	Details     BookingDetails       `json:"details"`
	Financials  Financials           `json:"financials"`
	LineItems   []PayloadLineItem    `json:"line_items"`
	Source      string               `json:"source"`
}

// BookingSlot is the scheduled visit inside the outbound contract.
type BookingSlot struct {
	Date   string `json:"date"`
	Window string `json:"window"`
	Tag    string `json:"tag"`
}

// HandoffRecord is the structured hand-off between the estimation widget and
// the booking hub, persisted for the lifetime of one session.
type HandoffRecord struct {
	SessionID     string     `json:"sessionId"`
	Panes         int        `json:"panes"`
	ScreenCount   int        `json:"screenCount"`
	RawTotal      Cents      `json:"rawTotal"`
	PriceMid      Cents      `json:"priceMid"`
	Savings       Cents      `json:"savings"`
	OnsiteMinutes float64    `json:"onsiteMinutes"`
	Sqft          int        `json:"sqft"`
	Address       string     `json:"address"`
	LineItems     []LineItem `json:"lineItems"`
}
