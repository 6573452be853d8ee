// Package observability – Prometheus collectors for the birthday pipeline.
//
// HTTP traffic is instrumented separately by the middleware package; the
// collectors here cover the domain side: message generation outcomes, Slack
// delivery outcomes, and cache refresh duration.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// MessagesGenerated counts message generation outcomes.
	// Outcomes: "generated" (model call succeeded) or "fallback" (fixed
	// greeting stored after a failure).
	MessagesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthday_messages_generated_total",
			Help: "Total birthday message generations by outcome.",
		},
		[]string{"outcome"},
	)

	// SlackDeliveries counts delivery attempts by outcome.
	// Outcomes: "sent", "dry_run", "failed".
	SlackDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slack_deliveries_total",
			Help: "Total Slack delivery attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheRefreshDuration records how long one full cache rebuild takes.
	// Regenerations dominate the tail, so buckets stretch into minutes.
	CacheRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "birthday_cache_refresh_seconds",
			Help:    "Duration of event cache refreshes in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(MessagesGenerated, SlackDeliveries, CacheRefreshDuration)
}
