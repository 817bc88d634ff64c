package models

// SoilingTier describes how dirty the glass is expected to be, which drives
// the per-pane soiling surcharge.
type SoilingTier string

const (
	SoilingLow  SoilingTier = "low"
	SoilingMid  SoilingTier = "mid"
	SoilingHigh SoilingTier = "high"
)

// Valid reports whether the tier is one of the accepted values.
func (t SoilingTier) Valid() bool {
	switch t {
	case SoilingLow, SoilingMid, SoilingHigh:
		return true
	}
	return false
}

// PropertyProfile is the immutable input for a single estimation run.
type PropertyProfile struct {
	Address        string      `json:"address"`
	AboveGradeSqft int         `json:"aboveGradeSqft"`
	BelowGradeSqft int         `json:"belowGradeSqft"`
	TotalBeds      int         `json:"totalBeds"`
	BasementBeds   int         `json:"basementBeds"`
	YearBuilt      int         `json:"yearBuilt"`
	Stories        int         `json:"stories"`
	ZipCode        string      `json:"zipCode"`
	Soiling        SoilingTier `json:"soilingTier"`
	HasBasement    bool        `json:"hasBasement"`
	SkylightCount  int         `json:"skylightCount"`
	FrenchPanes    bool        `json:"frenchPanes"`
}

// RegionalProfile carries the per-region density coefficient (rho) and style
// multiplier (phi) used by the baseline calculator.
type RegionalProfile struct {
	Rho           float64 `json:"rho"`
	Phi           float64 `json:"phi"`
	Description   string  `json:"description"`
	HighSkylights bool    `json:"highSkylights"`
}

// PaneDistribution splits a total pane count across building levels.
// Level3 is zero unless the property has three stories.
type PaneDistribution struct {
	Level1   int `json:"level1"`
	Level2   int `json:"level2"`
	Level3   int `json:"level3"`
	Basement int `json:"basement"`
}

// Total returns the sum of all levels including the basement.
func (d PaneDistribution) Total() int {
	return d.Level1 + d.Level2 + d.Level3 + d.Basement
}

// Baseline is the deterministic pane-count output of the regional baseline
// calculator, established before any visual reconciliation.
type Baseline struct {
	HouseTotal    int    `json:"houseTotal"`
	BasementPanes int    `json:"basementPanes"`
	GarageTarget  int    `json:"garageTarget"`
	EstSkylights  int    `json:"estSkylights"`
	Pre1980       bool   `json:"pre1980"`
	RegionNote    string `json:"regionNote"`
}
