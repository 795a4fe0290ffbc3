package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CounterSyncOutcomes counts synchronizer decisions per event kind
	CounterSyncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickreview_counter_sync_total",
			Help: "Comment events processed by the counter synchronizer",
		},
		[]string{"event", "outcome"}, // incremented, decremented, skipped, failed
	)

	// ReferenceFailures counts rejected reference attachments by reason
	ReferenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickreview_reference_failures_total",
			Help: "Reference attachments rejected by validation",
		},
		[]string{"reason"},
	)

	TokenCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quickreview_token_collisions_total",
			Help: "Generated references that already existed",
		},
	)

	TokenExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quickreview_token_exhausted_total",
			Help: "Reference generations that ran out of attempts",
		},
	)

	// HTTPRequestDuration tracks admin and hook request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "quickreview_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"route", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quickreview_rate_limited_total",
			Help: "Admin requests rejected by the rate limiter",
		},
	)
)

// RecordSyncOutcome records one synchronizer decision
func RecordSyncOutcome(event, outcome string) {
	CounterSyncOutcomes.WithLabelValues(event, outcome).Inc()
}

func RecordReferenceFailure(reason string) {
	ReferenceFailures.WithLabelValues(reason).Inc()
}

func RecordTokenCollision() {
	TokenCollisions.Inc()
}

func RecordTokenExhausted() {
	TokenExhausted.Inc()
}

// RecordHTTPRequest records the duration of a routed request
func RecordHTTPRequest(route, status string, duration float64) {
	HTTPRequestDuration.WithLabelValues(route, status).Observe(duration)
}

func RecordRateLimited() {
	RateLimited.Inc()
}
