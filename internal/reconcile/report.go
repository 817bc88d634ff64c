package reconcile

import (
	"context"

	"github.com/gleamhq/estimator/internal/models"
)

// LevelCount is the per-level glazing breakdown reported by the audit.
type LevelCount struct {
	Standard     int `json:"standard"`
	NonStandard  int `json:"non_standard"`
	SliderUnits  int `json:"slider_units"`
	PictureUnits int `json:"picture_units"`
}

// Panes returns every glazed unit on the level counted as individual panes.
func (l LevelCount) Panes() int {
	return l.Standard + l.NonStandard + l.SliderUnits + l.PictureUnits
}

// BasementCount splits below-grade windows into egress and standard units.
type BasementCount struct {
	EgressUnits   int `json:"egress_units"`
	StandardUnits int `json:"standard_units"`
}

// AuditLevels is the three-level breakdown of the audit report.
type AuditLevels struct {
	L1 LevelCount `json:"L1"`
	L2 LevelCount `json:"L2"`
	L3 LevelCount `json:"L3"`
}

// AuditReport is the structured output of the external visual audit.
type AuditReport struct {
	ReconciledGarage   int           `json:"reconciled_garage"`
	Skylights          int           `json:"skylights"`
	HasStormDoor       bool          `json:"has_storm_door"`
	Levels             AuditLevels   `json:"levels"`
	Basement           BasementCount `json:"basement"`
	StructuralEvidence bool          `json:"structural_evidence"`
}

// AuditRequest carries the property context and street-level imagery handed
// to the oracle.
type AuditRequest struct {
	Address  string
	Profile  models.PropertyProfile
	Baseline models.Baseline
	Stories  int
	Images   [][]byte
}

// Oracle is the external visual classification collaborator. Implementations
// must return an error rather than a partially-populated report.
type Oracle interface {
	Audit(ctx context.Context, req AuditRequest) (*AuditReport, error)
}

// ImageSource fetches the street-level imagery for a property. All images
// must be returned or none; a partial set is an error.
type ImageSource interface {
	Fetch(ctx context.Context, address string) ([][]byte, error)
}
