package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"continuum-hq/continuum/pkg/decision"
)

// PromMetrics exposes the aggregator's signals through a Prometheus
// registry so operators can scrape them alongside the JSON snapshot
// endpoint.
type PromMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	llmCallsTotal   prometheus.Counter
	outOfScopeTotal prometheus.Counter
	latencySeconds  prometheus.Histogram
}

// NewPromMetrics creates and registers the metric set on a fresh
// registry.
func NewPromMetrics() *PromMetrics {
	registry := prometheus.NewRegistry()

	m := &PromMetrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "continuum",
			Name:      "requests_total",
			Help:      "Analyzed requests by decision state.",
		}, []string{"decision"}),
		llmCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "continuum",
			Name:      "llm_calls_total",
			Help:      "Requests whose verdict involved an LLM call.",
		}),
		outOfScopeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "continuum",
			Name:      "out_of_scope_total",
			Help:      "Requests classified out of scope.",
		}),
		latencySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "continuum",
			Name:      "request_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(m.requestsTotal, m.llmCallsTotal, m.outOfScopeTotal, m.latencySeconds)
	return m
}

// Observe records one analysis into the Prometheus metrics.
func (m *PromMetrics) Observe(state decision.State, latencyMs float64, llmUsed, outOfScopeHit bool) {
	m.requestsTotal.WithLabelValues(string(state)).Inc()
	if llmUsed {
		m.llmCallsTotal.Inc()
	}
	if outOfScopeHit {
		m.outOfScopeTotal.Inc()
	}
	m.latencySeconds.Observe(latencyMs / 1000)
}

// Handler returns the scrape endpoint for this registry.
func (m *PromMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
