package estimate

import (
	"fmt"
	"math"

	"github.com/gleamhq/estimator/internal/models"
)

// Rates holds every pricing constant in integer cents plus the ratio
// constants that drive the large-pane attribution.
type Rates struct {
	BaseRate           models.Cents
	LogisticsFee       models.Cents
	Soiling            map[models.SoilingTier]models.Cents
	HeightLevel2       models.Cents
	HeightLevel3       models.Cents
	BasementSurcharge  models.Cents
	LargePaneSurcharge models.Cents
	FrenchPaneRate     models.Cents
	SkylightPrice      models.Cents
	ScreenPrice        models.Cents
	TrackPrice         models.Cents
	SealingPrice       models.Cents
	LargePaneRatio     float64
	LargePaneRatioUp   float64
}

// Durations holds the empirical per-pane minute constants per service type.
type Durations struct {
	ExteriorPerPane float64
	InteriorPerPane float64
	ScreenPerPane   float64
	TrackPerPane    float64
	SkylightFlat    float64
	LogisticsFlat   float64
	CrewParallelism float64
}

// BandDensities maps each pricing band to its panes-per-square-foot constant.
// The three constants are monotonically ordered, which is what guarantees
// priceLow <= priceMid <= priceHigh.
type BandDensities map[models.PricingBand]float64

// DefaultRates returns the production rate card.
func DefaultRates() Rates {
	return Rates{
		BaseRate:     195,
		LogisticsFee: 6000,
		Soiling: map[models.SoilingTier]models.Cents{
			models.SoilingLow:  2,
			models.SoilingMid:  118,
			models.SoilingHigh: 181,
		},
		HeightLevel2:       88,
		HeightLevel3:       179,
		BasementSurcharge:  250,
		LargePaneSurcharge: 185,
		FrenchPaneRate:     442,
		SkylightPrice:      1500,
		ScreenPrice:        250,
		TrackPrice:         350,
		SealingPrice:       150,
		LargePaneRatio:     0.10,
		LargePaneRatioUp:   0.05,
	}
}

// DefaultDurations returns the production time model.
func DefaultDurations() Durations {
	return Durations{
		ExteriorPerPane: 2.57,
		InteriorPerPane: 1.57,
		ScreenPerPane:   1.17,
		TrackPerPane:    3.60,
		SkylightFlat:    7.5,
		LogisticsFlat:   40,
		CrewParallelism: 1.47,
	}
}

// DefaultBandDensities returns the production band constants.
func DefaultBandDensities() BandDensities {
	return BandDensities{
		models.BandLow:  0.010,
		models.BandMid:  0.014,
		models.BandHigh: 0.016,
	}
}

// PricingInput is everything one band computation needs.
type PricingInput struct {
	Distribution models.PaneDistribution
	Services     models.ServiceSelection
	Skylights    int
	Soiling      models.SoilingTier
	FrenchPanes  bool
}

// Engine converts pane distributions plus selected services into cost and
// time line items across the three confidence bands.
type Engine struct {
	rates     Rates
	durations Durations
	densities BandDensities
}

// NewEngine builds a pricing engine from a rate card, time model, and band
// density constants.
func NewEngine(rates Rates, durations Durations, densities BandDensities) *Engine {
	return &Engine{rates: rates, durations: durations, densities: densities}
}

// NewDefaultEngine builds an engine with the production constants.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRates(), DefaultDurations(), DefaultBandDensities())
}

// Density returns the panes-per-square-foot constant for a band.
func (e *Engine) Density(band models.PricingBand) float64 {
	return e.densities[band]
}

// PriceBand runs the full cost computation for one band. The algorithm is
// identical across bands; only the density-derived distribution differs.
// The total floors at the logistics fee and is rounded up to the nearest
// whole dollar at the end only.
func (e *Engine) PriceBand(in PricingInput) models.BandQuote {
	r := e.rates
	d := in.Distribution

	soil, ok := r.Soiling[in.Soiling]
	if !ok {
		soil = r.Soiling[models.SoilingMid]
	}

	// Grid/divided-light homes reprice every pane at the flat french-pane
	// rate and skip the large-pane attribution entirely.
	base := r.BaseRate
	if in.FrenchPanes {
		base = r.FrenchPaneRate
	}

	perPane1 := base + soil
	perPane2 := base + soil + r.HeightLevel2
	perPane3 := base + soil + r.HeightLevel3
	perPaneBsmt := base + soil + r.BasementSurcharge

	ext := models.Cents(d.Level1)*perPane1 +
		models.Cents(d.Level2)*perPane2 +
		models.Cents(d.Level3)*perPane3 +
		models.Cents(d.Basement)*perPaneBsmt

	if !in.FrenchPanes {
		large := int(math.Ceil(float64(d.Level1) * r.LargePaneRatio))
		largeUpper := int(math.Ceil(float64(d.Level2+d.Level3) * r.LargePaneRatioUp))
		ext += models.Cents(large+largeUpper) * r.LargePaneSurcharge
	}

	total := r.LogisticsFee + ext

	totalPanes := d.Total()

	// Interior package reprices the same pane count at base rate only, with
	// no height surcharge; it is additive on top of exterior.
	var interior models.Cents
	if in.Services.Interior {
		interior = models.Cents(totalPanes) * base
		if !in.FrenchPanes {
			large := int(math.Ceil(float64(d.Level1) * r.LargePaneRatio))
			interior += models.Cents(large) * r.LargePaneSurcharge
		}
		total += interior
	}

	var sky models.Cents
	if in.Skylights > 0 {
		sky = models.Cents(in.Skylights) * r.SkylightPrice
		total += sky
	}

	var screens, tracks, sealing models.Cents
	if in.Services.Screens {
		screens = models.Cents(totalPanes) * r.ScreenPrice
		total += screens
	}
	if in.Services.Tracks {
		tracks = models.Cents(totalPanes) * r.TrackPrice
		total += tracks
	}
	if in.Services.Sealing {
		sealing = models.Cents(totalPanes) * r.SealingPrice
		total += sealing
	}

	return models.BandQuote{
		Total:     total.CeilToDollar(),
		Exterior:  ext,
		Interior:  interior,
		Skylights: sky,
		Screens:   screens,
		Tracks:    tracks,
		Sealing:   sealing,
		Logistics: r.LogisticsFee,
	}
}

// LineItems builds the itemized breakdown from the mid-band quote, tagging
// every item with its category at creation time.
func (e *Engine) LineItems(mid models.BandQuote, panes, skylights int, services models.ServiceSelection) []models.LineItem {
	t := e.durations
	items := []models.LineItem{{
		Name:        "Exterior Cleaning",
		Sub:         "Glass, Frames & Sills",
		SKU:         "RES-WIN-EXT",
		Category:    models.CategoryWindow,
		Cost:        mid.Exterior,
		TimeMinutes: float64(panes) * t.ExteriorPerPane,
	}}

	if services.Interior {
		items = append(items, models.LineItem{
			Name:        "Interior Cleaning",
			Sub:         "Inside Glass & Sills",
			SKU:         "RES-WIN-INT",
			Category:    models.CategoryWindow,
			Cost:        mid.Interior,
			TimeMinutes: float64(panes) * t.InteriorPerPane,
		})
	}
	if services.Screens {
		items = append(items, models.LineItem{
			Name:        "Screens",
			SKU:         "RES-WIN-SCR",
			Category:    models.CategoryWindow,
			Cost:        mid.Screens,
			TimeMinutes: float64(panes) * t.ScreenPerPane,
		})
	}
	if services.Tracks {
		items = append(items, models.LineItem{
			Name:        "Deep Track Clean",
			SKU:         "RES-WIN-TRK",
			Category:    models.CategoryWindow,
			Cost:        mid.Tracks,
			TimeMinutes: float64(panes) * t.TrackPerPane,
		})
	}
	if services.Sealing {
		items = append(items, models.LineItem{
			Name:        "Glass Sealing",
			SKU:         "RES-WIN-SEL",
			Category:    models.CategoryWindow,
			Cost:        mid.Sealing,
			TimeMinutes: 0,
		})
	}
	if skylights > 0 {
		items = append(items, models.LineItem{
			Name:        fmt.Sprintf("Skylights (x%d)", skylights),
			SKU:         "RES-WIN-SKY",
			Category:    models.CategoryWindow,
			Cost:        mid.Skylights,
			TimeMinutes: float64(skylights) * t.SkylightFlat,
		})
	}

	items = append(items, models.LineItem{
		Name:        "Logistics & Setup",
		SKU:         "RES-LOG-FEE",
		Category:    models.CategoryLogistics,
		Cost:        mid.Logistics,
		TimeMinutes: t.LogisticsFlat,
	})
	return items
}

// OnsiteMinutes rolls item minutes up into crew-adjusted on-site time.
func (e *Engine) OnsiteMinutes(items []models.LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.TimeMinutes
	}
	return sum / e.durations.CrewParallelism
}
