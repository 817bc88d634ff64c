package estimate

import (
	"math"
	"regexp"

	"github.com/gleamhq/estimator/internal/models"
)

// DefaultZip is used when no 5-digit ZIP can be extracted from the address.
const DefaultZip = "80109"

// garageTarget is the expected count of fixed glass panels on a modern
// double garage door, used as the reconciliation anchor.
const garageTarget = 12

// pre1980Multiplier accounts for divided-light/grid glazing on older homes,
// which counts as more individual panes per opening.
const pre1980Multiplier = 1.40

// regionalProfiles maps ZIP codes to density coefficient (rho) and style
// multiplier (phi). Unmapped ZIPs fall back to the standard profile.
var regionalProfiles = map[string]models.RegionalProfile{
	"80108": {Rho: 1.15, Phi: 1.60, Description: "Luxury Custom / High Glass Density"},
	"80109": {Rho: 1.15, Phi: 1.45, Description: "Modern Tract/Custom / High Egress Probability"},
	"80206": {Rho: 1.25, Phi: 1.40, Description: "Historic Core / French Grid Dominance"},
	"99352": {Rho: 0.95, Phi: 1.25, Description: "PNW Contemporary / Rambler Styles", HighSkylights: true},
}

var defaultProfile = models.RegionalProfile{Rho: 1.10, Phi: 1.15, Description: "Standard Residential"}

var zipPattern = regexp.MustCompile(`\b\d{5}\b`)

// ExtractZip pulls the first 5-digit ZIP out of a free-text address.
// Falls back to DefaultZip when none is present.
func ExtractZip(address string) string {
	if zip := zipPattern.FindString(address); zip != "" {
		return zip
	}
	return DefaultZip
}

// RegionFor looks up the regional profile for a ZIP code. An unmapped ZIP
// silently resolves to the standard profile; degraded precision is intentional
// and not an error.
func RegionFor(zip string) models.RegionalProfile {
	if p, ok := regionalProfiles[zip]; ok {
		return p
	}
	return defaultProfile
}

// BaselineCalculator maps property attributes plus location to a
// deterministic pane-count baseline. Identical inputs always produce
// identical outputs.
type BaselineCalculator struct{}

// NewBaselineCalculator returns a ready calculator.
func NewBaselineCalculator() *BaselineCalculator {
	return &BaselineCalculator{}
}

// Calculate produces the deterministic baseline for a property. The house
// total is rounded to the nearest integer at the end only, never at
// intermediate steps.
func (bc *BaselineCalculator) Calculate(p models.PropertyProfile) models.Baseline {
	zip := p.ZipCode
	if zip == "" {
		zip = ExtractZip(p.Address)
	}
	region := RegionFor(zip)

	// Hyper-scale guardrail: logarithmic decay for very large homes avoids
	// linear overestimation above 4,500 sq ft.
	var housePanes float64
	if p.AboveGradeSqft > 4500 {
		housePanes = 55 + math.Log10(float64(p.AboveGradeSqft-4400))*15
	} else {
		housePanes = (float64(p.AboveGradeSqft) / 100) * region.Rho * region.Phi
	}

	pre1980 := p.YearBuilt < 1980
	if pre1980 {
		housePanes *= pre1980Multiplier
	}

	// IRC-style proxy rule: 2 panes per egress bedroom plus one window
	// (2 panes) per 600 sq ft of remaining habitable below-grade area.
	remaining := float64(p.BelowGradeSqft - p.BasementBeds*250)
	basementPanes := p.BasementBeds*2 + int(math.Round(remaining/600*2))
	if basementPanes < 0 {
		basementPanes = 0
	}

	estSkylights := 0
	if p.AboveGradeSqft > 3500 || region.HighSkylights {
		estSkylights = 2
	}

	return models.Baseline{
		HouseTotal:    int(math.Round(housePanes)),
		BasementPanes: basementPanes,
		GarageTarget:  garageTarget,
		EstSkylights:  estSkylights,
		Pre1980:       pre1980,
		RegionNote:    region.Description,
	}
}
