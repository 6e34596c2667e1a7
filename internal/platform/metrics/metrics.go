package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	Disclosures        prometheus.Counter
	ReleaseTransitions *prometheus.CounterVec
	ChainVerifications *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heirloom_access_evaluations_total",
			Help: "Access decisions grouped by outcome",
		}, []string{"outcome"}),
		Disclosures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_key_disclosures_total",
			Help: "Sealed key envelopes disclosed to beneficiaries",
		}),
		ReleaseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heirloom_release_transitions_total",
			Help: "Successful release state transitions by target state",
		}, []string{"target"}),
		ChainVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heirloom_chain_verifications_total",
			Help: "Audit chain verification runs by result",
		}, []string{"result"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heirloom_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveEvaluation counts one access decision outcome.
func (m *Metrics) ObserveEvaluation(outcome string) {
	m.Evaluations.WithLabelValues(outcome).Inc()
}

// ObserveDisclosure counts one sealed key disclosure.
func (m *Metrics) ObserveDisclosure() {
	m.Disclosures.Inc()
}

// ObserveTransition counts one successful release transition.
func (m *Metrics) ObserveTransition(target string) {
	m.ReleaseTransitions.WithLabelValues(target).Inc()
}

// ObserveVerification counts one chain verification run.
func (m *Metrics) ObserveVerification(ok bool) {
	result := "pass"
	if !ok {
		result = "fail"
	}
	m.ChainVerifications.WithLabelValues(result).Inc()
}

// ObserveLatency records one request's duration for a route.
func (m *Metrics) ObserveLatency(route string, d time.Duration) {
	m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
}
