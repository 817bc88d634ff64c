package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gleamhq/estimator/internal/estimate"
	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/metrics"
	"github.com/gleamhq/estimator/internal/models"
	"github.com/gleamhq/estimator/internal/reconcile"
	"github.com/gleamhq/estimator/internal/session"
)

// Property input domain. Values outside the range are rejected, never
// silently clamped.
const (
	MinSqft = 500
	MaxSqft = 10000

	MinStories = 1
	MaxStories = 3
)

// defaultBasementPanes is assumed when the basement flag is set without any
// below-grade square footage to derive a count from.
const defaultBasementPanes = 8

// Service-level errors
var (
	ErrSqftOutOfRange  = errors.New("above-grade square footage out of accepted range")
	ErrInvalidStories  = errors.New("stories must be between 1 and 3")
	ErrInvalidSoiling  = errors.New("soiling tier must be low, mid, or high")
	ErrSessionNotFound = errors.New("estimation session not found")
)

// EstimateRequest is one estimation run: an immutable property profile plus
// the selected services.
type EstimateRequest struct {
	Profile   models.PropertyProfile
	Services  models.ServiceSelection
	Reconcile bool
}

// EstimateOutcome pairs the estimate snapshot with its hand-off session id
// and the deterministic baseline it was computed from.
type EstimateOutcome struct {
	SessionID string                `json:"sessionId"`
	Baseline  models.Baseline       `json:"baseline"`
	Result    models.EstimateResult `json:"result"`
}

// EstimateService runs the estimation pipeline and owns the hand-off records.
type EstimateService interface {
	// Estimate runs the full pipeline for one property profile.
	// Returns ErrSqftOutOfRange, ErrInvalidStories, or ErrInvalidSoiling for
	// rejected inputs.
	Estimate(ctx context.Context, req EstimateRequest) (*EstimateOutcome, error)

	// Handoff loads the hand-off record for a session.
	// Returns ErrSessionNotFound when absent or expired.
	Handoff(ctx context.Context, sessionID string) (*models.HandoffRecord, error)
}

type estimateService struct {
	baseline *estimate.BaselineCalculator
	engine   *estimate.Engine
	adapter  *reconcile.Adapter
	store    session.Store
	log      *logger.Logger
}

// NewEstimateService wires the estimation pipeline. The reconciliation
// adapter may be nil when the oracle is not configured.
func NewEstimateService(engine *estimate.Engine, adapter *reconcile.Adapter, store session.Store, log *logger.Logger) EstimateService {
	return &estimateService{
		baseline: estimate.NewBaselineCalculator(),
		engine:   engine,
		adapter:  adapter,
		store:    store,
		log:      log,
	}
}

func (s *estimateService) Estimate(ctx context.Context, req EstimateRequest) (*EstimateOutcome, error) {
	if err := s.validate(req.Profile); err != nil {
		s.log.Warn("Rejected estimation input", map[string]interface{}{
			"sqft":    req.Profile.AboveGradeSqft,
			"stories": req.Profile.Stories,
			"error":   err.Error(),
		})
		return nil, err
	}

	profile := req.Profile
	baseline := s.baseline.Calculate(profile)

	// Optional visual reconciliation. Every failure inside the adapter
	// resolves to the deterministic baseline; it never errors out here.
	counts := s.reconcile(ctx, req.Reconcile, profile, baseline)

	basementPanes := 0
	if profile.HasBasement {
		basementPanes = counts.BasementPanes
		if basementPanes == 0 {
			basementPanes = defaultBasementPanes
		}
	}

	skylights := profile.SkylightCount
	if skylights == 0 {
		skylights = counts.Skylights
	}

	panes := counts.HouseTotal + basementPanes

	// The three bands run the identical computation over density-scaled
	// distributions; monotone densities are what order the band prices.
	quotes := make(map[models.PricingBand]models.BandQuote, 3)
	for _, band := range []models.PricingBand{models.BandLow, models.BandMid, models.BandHigh} {
		total := s.bandPanes(profile, counts, band)
		dist := estimate.Distribute(total, profile.Stories)
		dist.Basement = basementPanes

		quotes[band] = s.engine.PriceBand(estimate.PricingInput{
			Distribution: dist,
			Services:     req.Services,
			Skylights:    skylights,
			Soiling:      profile.Soiling,
			FrenchPanes:  profile.FrenchPanes,
		})
	}

	discount := estimate.BundleDiscount(req.Services.Count())

	items := s.engine.LineItems(quotes[models.BandMid], panes, skylights, req.Services)
	onsite := s.engine.OnsiteMinutes(items)

	screens := counts.ScreenCount
	if screens == 0 {
		screens = panes
	}

	result := models.EstimateResult{
		PriceLow:      estimate.ApplyDiscount(quotes[models.BandLow].Total, discount),
		PriceMid:      estimate.ApplyDiscount(quotes[models.BandMid].Total, discount),
		PriceHigh:     estimate.ApplyDiscount(quotes[models.BandHigh].Total, discount),
		RawTotal:      quotes[models.BandMid].Total,
		Discount:      discount,
		Panes:         panes,
		ScreenCount:   screens,
		LineItems:     items,
		OnsiteMinutes: onsite,
		Reconciled:    counts.FromAudit,
	}

	outcome := &EstimateOutcome{
		SessionID: uuid.New().String(),
		Baseline:  baseline,
		Result:    result,
	}

	record := models.HandoffRecord{
		SessionID:     outcome.SessionID,
		Panes:         result.Panes,
		ScreenCount:   result.ScreenCount,
		RawTotal:      result.RawTotal,
		PriceMid:      result.PriceMid,
		Savings:       result.RawTotal - result.PriceMid,
		OnsiteMinutes: result.OnsiteMinutes,
		Sqft:          profile.AboveGradeSqft,
		Address:       profile.Address,
		LineItems:     result.LineItems,
	}
	if err := s.store.Save(ctx, record, session.DefaultTTL); err != nil {
		return nil, fmt.Errorf("save handoff record: %w", err)
	}

	metrics.EstimatesComputed.Inc()
	s.log.Info("Estimate computed", map[string]interface{}{
		"session_id": outcome.SessionID,
		"panes":      result.Panes,
		"price_mid":  result.PriceMid.Dollars(),
		"discount":   discount,
		"reconciled": result.Reconciled,
	})

	return outcome, nil
}

func (s *estimateService) Handoff(ctx context.Context, sessionID string) (*models.HandoffRecord, error) {
	record, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load handoff record: %w", err)
	}
	return record, nil
}

func (s *estimateService) validate(p models.PropertyProfile) error {
	if p.AboveGradeSqft < MinSqft || p.AboveGradeSqft > MaxSqft {
		return fmt.Errorf("%w: got %d", ErrSqftOutOfRange, p.AboveGradeSqft)
	}
	if p.Stories < MinStories || p.Stories > MaxStories {
		return fmt.Errorf("%w: got %d", ErrInvalidStories, p.Stories)
	}
	if !p.Soiling.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidSoiling, p.Soiling)
	}
	return nil
}

func (s *estimateService) reconcile(ctx context.Context, requested bool, profile models.PropertyProfile, baseline models.Baseline) reconcile.Reconciled {
	if !requested || s.adapter == nil {
		return reconcile.Reconciled{
			HouseTotal:    baseline.HouseTotal,
			BasementPanes: baseline.BasementPanes,
			Skylights:     baseline.EstSkylights,
			GaragePanes:   baseline.GarageTarget,
		}
	}

	metrics.ReconciliationAttempts.Inc()
	counts := s.adapter.Reconcile(ctx, profile, baseline)
	if !counts.FromAudit {
		metrics.ReconciliationFallbacks.Inc()
	}
	return counts
}

// bandPanes derives a band's house pane count. Without an audit each band is
// a flat per-square-foot density; once an audit has fixed the true count the
// bands scale it by their density ratio so the audited number stays the mid
// anchor.
func (s *estimateService) bandPanes(profile models.PropertyProfile, counts reconcile.Reconciled, band models.PricingBand) int {
	if counts.FromAudit {
		ratio := s.engine.Density(band) / s.engine.Density(models.BandMid)
		return int(math.Ceil(float64(counts.HouseTotal) * ratio))
	}
	return int(math.Ceil(float64(profile.AboveGradeSqft) * s.engine.Density(band)))
}
