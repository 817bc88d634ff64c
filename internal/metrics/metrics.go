// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimatesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "estimator_estimates_computed_total",
			Help: "Total number of estimation runs completed",
		},
	)

	ReconciliationAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "estimator_reconciliation_attempts_total",
			Help: "Total number of visual reconciliation attempts",
		},
	)

	ReconciliationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "estimator_reconciliation_fallbacks_total",
			Help: "Reconciliation attempts that fell back to the deterministic baseline",
		},
	)

	AvailabilityFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estimator_availability_fetches_total",
			Help: "Availability webhook lookups by outcome",
		},
		[]string{"outcome"},
	)

	BookingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estimator_bookings_submitted_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"outcome"},
	)
)
