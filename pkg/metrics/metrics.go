package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts transaction submissions by envelope kind and
	// terminal outcome (success/failed).
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_gateway_submissions_total",
			Help: "Transaction submissions by kind and terminal outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// ContractPollAttempts observes how many status polls a contract
	// transaction needed before reaching a terminal state.
	ContractPollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swap_gateway_contract_poll_attempts",
			Help:    "Status poll attempts per contract transaction.",
			Buckets: prometheus.LinearBuckets(1, 2, 15),
		},
	)

	// WalletBridgeFailures counts failed wallet bridge calls by capability.
	WalletBridgeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_gateway_wallet_bridge_failures_total",
			Help: "Failed wallet bridge calls by capability.",
		},
		[]string{"capability"},
	)

	// StalePreviewsDropped counts preview fetch results discarded because a
	// newer request superseded them.
	StalePreviewsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swap_gateway_stale_previews_dropped_total",
			Help: "Preview responses dropped due to a newer generation.",
		},
	)

	// ActivityPollErrors counts failed event-stream poll rounds.
	ActivityPollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swap_gateway_activity_poll_errors_total",
			Help: "Failed activity feed poll rounds.",
		},
	)
)

// MustRegisterMetrics registers all gateway collectors with the default
// registry. Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ContractPollAttempts,
		WalletBridgeFailures,
		StalePreviewsDropped,
		ActivityPollErrors,
	)
}
