package services

import (
	"context"
	"fmt"
	"math"

	"github.com/gleamhq/estimator/internal/addons"
	"github.com/gleamhq/estimator/internal/booking"
	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/metrics"
	"github.com/gleamhq/estimator/internal/models"
)

// BookingQuote is the money roll-up for a session plus its current add-on
// selection.
type BookingQuote struct {
	BasePrice  float64 `json:"basePrice"`
	AddonPrice float64 `json:"addonPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Savings    float64 `json:"savings"`
}

// BookRequest is one booking confirmation.
type BookRequest struct {
	SessionID   string
	Selection   map[string]addons.Selection
	Contact     models.Contact
	Address     string
	Attribution models.MarketingAttribution
	Slot        models.Slot
}

// BookingService resolves add-ons for a session, quotes the bundle, and
// submits the final contract.
type BookingService interface {
	// ResolveAddons returns the catalog entries available for a session.
	ResolveAddons(ctx context.Context, sessionID string) ([]addons.Definition, error)

	// Quote computes price and savings for a session's add-on selection.
	Quote(ctx context.Context, sessionID string, selection map[string]addons.Selection) (*BookingQuote, error)

	// Availability fetches open arrival windows sized for the session's job.
	Availability(ctx context.Context, sessionID string) ([]models.Slot, error)

	// Book assembles the final payload and submits it exactly once.
	// Failures are returned for a user-visible retry.
	Book(ctx context.Context, req BookRequest) (*booking.SubmitResult, error)
}

type bookingService struct {
	estimates EstimateService
	client    *booking.Client
	log       *logger.Logger
}

// NewBookingService wires the booking pipeline on top of the estimate
// service's hand-off records.
func NewBookingService(estimates EstimateService, client *booking.Client, log *logger.Logger) BookingService {
	return &bookingService{
		estimates: estimates,
		client:    client,
		log:       log,
	}
}

// aggregatorFor rebuilds a session's aggregator from its hand-off record and
// the client-held selection. One aggregator per request; nothing is shared
// across sessions.
func (s *bookingService) aggregatorFor(ctx context.Context, sessionID string, selection map[string]addons.Selection) (*addons.Aggregator, *models.HandoffRecord, error) {
	record, err := s.estimates.Handoff(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	agg := addons.NewAggregator(addons.ContextFromLineItems(record.LineItems, record.ScreenCount))
	if selection != nil {
		agg.Restore(selection)
	}
	return agg, record, nil
}

func (s *bookingService) ResolveAddons(ctx context.Context, sessionID string) ([]addons.Definition, error) {
	agg, _, err := s.aggregatorFor(ctx, sessionID, nil)
	if err != nil {
		return nil, err
	}
	return agg.Available(), nil
}

func (s *bookingService) Quote(ctx context.Context, sessionID string, selection map[string]addons.Selection) (*BookingQuote, error) {
	agg, record, err := s.aggregatorFor(ctx, sessionID, selection)
	if err != nil {
		return nil, err
	}

	totals := agg.ComputeTotals()
	return &BookingQuote{
		BasePrice:  record.RawTotal.Dollars(),
		AddonPrice: totals.Price.Dollars(),
		TotalPrice: (record.RawTotal + totals.Price).Dollars(),
		Savings:    (totals.Savings + record.Savings).Dollars(),
	}, nil
}

func (s *bookingService) Availability(ctx context.Context, sessionID string) ([]models.Slot, error) {
	record, err := s.estimates.Handoff(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	slots, err := s.client.FetchAvailability(ctx, booking.AvailabilityRequest{
		DurationMinutes: int(math.Round(record.OnsiteMinutes)),
		EstimatedPanes:  record.Panes,
		Address:         record.Address,
	})
	if err != nil {
		metrics.AvailabilityFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("availability lookup: %w", err)
	}

	metrics.AvailabilityFetches.WithLabelValues("ok").Inc()
	s.log.Info("Availability fetched", map[string]interface{}{
		"session_id": sessionID,
		"slots":      len(slots),
	})
	return slots, nil
}

func (s *bookingService) Book(ctx context.Context, req BookRequest) (*booking.SubmitResult, error) {
	agg, record, err := s.aggregatorFor(ctx, req.SessionID, req.Selection)
	if err != nil {
		return nil, err
	}

	address := req.Address
	if address == "" {
		address = record.Address
	}

	payload := booking.Assemble(booking.AssemblyInput{
		Handoff:     *record,
		AddonItems:  agg.LineItems(),
		AddonTotals: agg.ComputeTotals(),
		Contact:     req.Contact,
		Address:     address,
		Attribution: req.Attribution,
		Slot:        req.Slot,
	})

	result, err := s.client.Submit(ctx, payload)
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("error").Inc()
		s.log.Error("Booking submission failed", err, map[string]interface{}{
			"session_id": req.SessionID,
		})
		return nil, fmt.Errorf("submit booking: %w", err)
	}

	metrics.BookingsSubmitted.WithLabelValues("ok").Inc()
	s.log.Info("Booking submitted", map[string]interface{}{
		"session_id":   req.SessionID,
		"total_price":  payload.Financials.TotalPrice,
		"line_items":   len(payload.LineItems),
		"confirmation": result.Confirmation,
	})
	return result, nil
}
