package reconcile

import (
	"context"

	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/models"
)

// garageVariance is the accepted relative deviation between the externally
// reported garage pane count and the deterministic target.
const garageVariance = 0.25

// largeGlassFloor is the minimum credible large-glass pane count for any
// footprint.
const largeGlassFloor = 4

// Reconciled is the audit-corrected view of a baseline. It replaces the
// deterministic counts only when the external audit succeeded.
type Reconciled struct {
	Distribution  models.PaneDistribution
	HouseTotal    int
	BasementPanes int
	Skylights     int
	GaragePanes   int
	ScreenCount   int
	FromAudit     bool
}

// Adapter runs the optional visual reconciliation: fetch street-level
// imagery, ask the oracle for a structured audit, and fold the result back
// into the deterministic baseline under variance guardrails. Reconciliation
// is strictly additive precision; every failure path returns the baseline
// unmodified.
type Adapter struct {
	images ImageSource
	oracle Oracle
	log    *logger.Logger
}

// NewAdapter wires an adapter from its collaborators.
func NewAdapter(images ImageSource, oracle Oracle, log *logger.Logger) *Adapter {
	return &Adapter{images: images, oracle: oracle, log: log}
}

// Reconcile attempts the external audit for a property. The returned
// Reconciled has FromAudit=false whenever the deterministic baseline was used
// as-is; that path never carries an error to the caller.
func (a *Adapter) Reconcile(ctx context.Context, profile models.PropertyProfile, baseline models.Baseline) Reconciled {
	fallback := deterministic(profile, baseline)

	if a.images == nil || a.oracle == nil {
		return fallback
	}

	imgs, err := a.images.Fetch(ctx, profile.Address)
	if err != nil {
		a.log.Warn("Street-level image fetch failed, using deterministic baseline", map[string]interface{}{
			"address": profile.Address,
			"error":   err.Error(),
		})
		return fallback
	}

	report, err := a.oracle.Audit(ctx, AuditRequest{
		Address:  profile.Address,
		Profile:  profile,
		Baseline: baseline,
		Stories:  profile.Stories,
		Images:   imgs,
	})
	if err != nil {
		a.log.Warn("Visual audit failed, using deterministic baseline", map[string]interface{}{
			"address": profile.Address,
			"error":   err.Error(),
		})
		return fallback
	}

	return a.apply(profile, baseline, report)
}

// deterministic builds the no-audit view straight from the baseline.
func deterministic(profile models.PropertyProfile, baseline models.Baseline) Reconciled {
	return Reconciled{
		HouseTotal:    baseline.HouseTotal,
		BasementPanes: baseline.BasementPanes,
		Skylights:     baseline.EstSkylights,
		GaragePanes:   baseline.GarageTarget,
		FromAudit:     false,
	}
}

// apply folds a validated audit report into the baseline under the variance
// guardrails.
func (a *Adapter) apply(profile models.PropertyProfile, baseline models.Baseline, report *AuditReport) Reconciled {
	levels := report.Levels

	// Large-glass guardrail: clamp the reported picture/slider pane count to
	// a range derived from footprint unless the report carries explicit
	// structural evidence. Any delta is pushed back into level-1 standard
	// panes so level sums stay intact.
	if !report.StructuralEvidence {
		large := levels.L1.PictureUnits + levels.L1.SliderUnits +
			levels.L2.PictureUnits + levels.L2.SliderUnits +
			levels.L3.PictureUnits
		clamped := clampLargeGlass(large, profile.AboveGradeSqft)
		switch delta := large - clamped; {
		case delta > 0:
			// Shave the overflow off level 1 first, then level 2.
			levels.L1, delta = shaveLarge(levels.L1, delta)
			levels.L2, _ = shaveLarge(levels.L2, delta)
		case delta < 0:
			// Under-floor reports promote level-1 standard panes instead.
			for delta < 0 && levels.L1.Standard > 0 {
				levels.L1.Standard--
				levels.L1.PictureUnits++
				delta++
			}
		}
	}

	dist := models.PaneDistribution{
		Level1:   levels.L1.Panes(),
		Level2:   levels.L2.Panes(),
		Level3:   levels.L3.Panes(),
		Basement: report.Basement.EgressUnits*2 + report.Basement.StandardUnits,
	}

	garage := reconcileGarage(report.ReconciledGarage, baseline.GarageTarget)

	houseTotal := dist.Level1 + dist.Level2 + dist.Level3
	if houseTotal == 0 {
		// An audit that saw no house glass at all is not credible; keep the
		// deterministic count.
		houseTotal = baseline.HouseTotal
		dist = models.PaneDistribution{}
	}

	a.log.Info("Visual audit reconciled", map[string]interface{}{
		"address":     profile.Address,
		"house_total": houseTotal,
		"garage":      garage,
		"skylights":   report.Skylights,
	})

	return Reconciled{
		Distribution:  dist,
		HouseTotal:    houseTotal,
		BasementPanes: dist.Basement,
		Skylights:     report.Skylights,
		GaragePanes:   garage,
		ScreenCount:   ScreenEstimate(report),
		FromAudit:     true,
	}
}

// reconcileGarage accepts the external garage count only when it falls within
// the variance band around the deterministic target. A hidden garage reports
// zero and also falls back.
func reconcileGarage(reported, target int) int {
	if reported <= 0 {
		return target
	}
	low := float64(target) * (1 - garageVariance)
	high := float64(target) * (1 + garageVariance)
	if float64(reported) < low || float64(reported) > high {
		return target
	}
	return reported
}

// clampLargeGlass bounds a large-glass pane count by square footage.
func clampLargeGlass(count, sqft int) int {
	max := 6
	if sqft > 4000 {
		max = 12
	}
	if count > max {
		return max
	}
	if count < largeGlassFloor {
		return largeGlassFloor
	}
	return count
}

// shaveLarge converts up to delta picture/slider panes on a level back into
// standard panes, returning the remaining delta.
func shaveLarge(l LevelCount, delta int) (LevelCount, int) {
	for delta > 0 && l.PictureUnits > 0 {
		l.PictureUnits--
		l.Standard++
		delta--
	}
	for delta > 0 && l.SliderUnits > 0 {
		l.SliderUnits--
		l.Standard++
		delta--
	}
	return l, delta
}

// ScreenEstimate derives the screen/track hardware count from the audited
// unit breakdown. Two panes make one standard unit; two units are excluded as
// the bathroom exception; sliders, egress wells, and a storm door each add
// one screen.
func ScreenEstimate(report *AuditReport) int {
	units := (report.Levels.L1.Standard+report.Levels.L1.NonStandard)/2 +
		(report.Levels.L2.Standard+report.Levels.L2.NonStandard)/2 +
		(report.Levels.L3.Standard+report.Levels.L3.NonStandard)/2
	units -= 2
	if units < 0 {
		units = 0
	}

	screens := units +
		report.Levels.L1.SliderUnits + report.Levels.L2.SliderUnits +
		report.Basement.EgressUnits
	if report.HasStormDoor {
		screens++
	}
	return screens
}
