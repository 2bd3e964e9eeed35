package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Identity webhook
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_webhook_events_total",
			Help: "Identity provider webhook deliveries by event type and outcome.",
		},
		[]string{"type", "outcome"}, // outcome: created|replay|updated|deleted|ignored|rejected|failed
	)

	// Course mutations
	CourseMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_mutations_total",
			Help: "Successful course mutations.",
		},
		[]string{"op"}, // create|update|delete
	)

	initOnce sync.Once
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency)
		prometheus.MustRegister(WebhookEventsTotal)
		prometheus.MustRegister(CourseMutationsTotal)
	})
}
