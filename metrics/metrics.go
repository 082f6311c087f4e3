// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the marketplace core: request-level
// HTTP metrics plus counters on the trust and provisioning paths.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	VerifySubmitted prometheus.Counter
	VerifyDecided   *prometheus.CounterVec
	ListingsCreated prometheus.Counter
}

// New creates a Metrics instance with all instruments registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomflow_http_requests_total",
			Help: "Total HTTP requests by route, method and status class",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roomflow_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		VerifySubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomflow_verification_submissions_total",
			Help: "Total verification evidence submissions accepted",
		}),
		VerifyDecided: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomflow_verification_decisions_total",
			Help: "Total verification decisions by outcome",
		}, []string{"outcome"}),
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomflow_listings_created_total",
			Help: "Total listings provisioned",
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, start time.Time) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// IncrementVerifySubmitted records an accepted evidence submission.
func (m *Metrics) IncrementVerifySubmitted() {
	m.VerifySubmitted.Inc()
}

// IncrementVerifyDecided records one decision, outcome "approved" or "rejected".
func (m *Metrics) IncrementVerifyDecided(outcome string) {
	m.VerifyDecided.WithLabelValues(outcome).Inc()
}

// IncrementListingsCreated records a provisioned listing.
func (m *Metrics) IncrementListingsCreated() {
	m.ListingsCreated.Inc()
}
