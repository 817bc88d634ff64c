package estimate

import (
	"math"

	"github.com/gleamhq/estimator/internal/models"
)

// BaselineStrategy names one interchangeable formula for deriving a house
// pane count from a property profile. Earlier formula iterations disagreed on
// coefficients; each surviving formula is a named strategy so no constants
// get merged silently.
type BaselineStrategy interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string
	// HousePanes returns the estimated above-grade pane count.
	HousePanes(p models.PropertyProfile) int
}

// RegionalDensityStrategy is the canonical baseline: regional rho/phi density
// with the hyper-scale guardrail and pre-1980 grid multiplier.
type RegionalDensityStrategy struct {
	calc *BaselineCalculator
}

// NewRegionalDensityStrategy returns the canonical strategy.
func NewRegionalDensityStrategy() *RegionalDensityStrategy {
	return &RegionalDensityStrategy{calc: NewBaselineCalculator()}
}

func (s *RegionalDensityStrategy) Name() string { return "regional-density" }

func (s *RegionalDensityStrategy) HousePanes(p models.PropertyProfile) int {
	return s.calc.Calculate(p).HouseTotal
}

// FlatDensityStrategy estimates panes as a flat per-square-foot density. One
// instance per pricing band produces the low/mid/high quote spread.
type FlatDensityStrategy struct {
	name    string
	density float64
}

// NewFlatDensityStrategy builds a flat density strategy with the given
// panes-per-square-foot constant.
func NewFlatDensityStrategy(name string, density float64) *FlatDensityStrategy {
	return &FlatDensityStrategy{name: name, density: density}
}

func (s *FlatDensityStrategy) Name() string { return s.name }

func (s *FlatDensityStrategy) HousePanes(p models.PropertyProfile) int {
	return int(math.Ceil(float64(p.AboveGradeSqft) * s.density))
}
