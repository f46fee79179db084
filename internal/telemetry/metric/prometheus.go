// Package metric provides Prometheus metrics for calcmesh.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "calcmesh"

// Request outcomes, used as the "outcome" label of RequestsTotal.
const (
	OutcomeOK             = "ok"
	OutcomeLexError       = "lex_error"
	OutcomeParseError     = "parse_error"
	OutcomeDivisionByZero = "division_by_zero"
	OutcomeBadRequest     = "bad_request"
	OutcomeRateLimited    = "rate_limited"
	OutcomeTransportError = "transport_error"
	OutcomeInternalError  = "internal_error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Request metrics
	RequestsTotal *prometheus.CounterVec
	EvalDuration  prometheus.Histogram
	RequestBytes  prometheus.Histogram
}

// NewRegistry creates a registry with all calcmesh collectors plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of connections currently being served.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted connections.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests by outcome.",
		}, []string{"outcome"}),
		EvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eval_duration_seconds",
			Help:      "Time spent lexing, parsing and evaluating one expression.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		RequestBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_bytes",
			Help:      "Size of request payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		}),
	}

	r.reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.RequestsTotal,
		r.EvalDuration,
		r.RequestBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create outcome series so dashboards see zeros instead of gaps.
	for _, o := range []string{
		OutcomeOK, OutcomeLexError, OutcomeParseError, OutcomeDivisionByZero,
		OutcomeBadRequest, OutcomeRateLimited, OutcomeTransportError, OutcomeInternalError,
	} {
		r.RequestsTotal.WithLabelValues(o)
	}

	return r
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ConnOpened records an accepted connection. A nil Registry is a no-op.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a finished connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// ObserveRequest records the outcome of one request.
func (r *Registry) ObserveRequest(outcome string, size int) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(outcome).Inc()
	if size >= 0 {
		r.RequestBytes.Observe(float64(size))
	}
}

// ObserveEval records how long one pipeline run took.
func (r *Registry) ObserveEval(d time.Duration) {
	if r == nil {
		return
	}
	r.EvalDuration.Observe(d.Seconds())
}
