package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		PaymentVerifyRequests,
		PaymentVerifyDuration,
		WebhookEventsTotal,
	)
}

var (
	// Client-side confirmation calls grouped by kind, result and bounded reason.
	// result: ok|fail
	// reason (fail only): bad_json|bad_signature|missing_secret|order_mismatch|gateway_error|no_pending|store_error|unknown
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment confirmation calls by kind, result and reason.",
		},
		[]string{"kind", "result", "reason"},
	)

	PaymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of payment confirmation handling in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"kind", "result"},
	)

	// Webhook deliveries by event and outcome.
	// outcome: applied|duplicate|ignored|bad_signature|error
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Gateway webhook deliveries by event type and outcome.",
		},
		[]string{"event", "outcome"},
	)
)

func ObserveVerify(kind, result, reason string, started time.Time) {
	PaymentVerifyRequests.WithLabelValues(norm(kind), norm(result), norm(reason)).Inc()
	PaymentVerifyDuration.WithLabelValues(norm(kind), norm(result)).Observe(time.Since(started).Seconds())
}

func IncWebhook(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	WebhookEventsTotal.WithLabelValues(norm(event), norm(outcome)).Inc()
}
