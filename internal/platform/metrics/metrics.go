package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the transport level Prometheus metrics.
type Metrics struct {
	RequestLatency     *prometheus.HistogramVec
	RateLimitDecisions *prometheus.CounterVec
	RateLimitDegraded  prometheus.Gauge
}

// New creates and registers the transport metrics on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relief_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RateLimitDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relief_http_rate_limit_decisions_total",
			Help: "Rate limit decisions by result (allowed, rejected, fail_open) and backend",
		}, []string{"result", "backend"}),
		RateLimitDegraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relief_http_rate_limit_degraded",
			Help: "1 while the rate limiter runs on its in-process fallback",
		}),
	}
}

func (m *Metrics) ObserveRequestLatency(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) IncrementRateLimitDecision(result, backend string) {
	if m == nil {
		return
	}
	m.RateLimitDecisions.WithLabelValues(result, backend).Inc()
}

func (m *Metrics) SetRateLimitDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.RateLimitDegraded.Set(1)
		return
	}
	m.RateLimitDegraded.Set(0)
}
