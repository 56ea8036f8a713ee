package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuance engine.
type Metrics struct {
	// Issue outcomes by result code ("ok" on success)
	IssueOutcome *prometheus.CounterVec

	// Overall issue latency including collaborator calls
	IssueLatency prometheus.Histogram

	// Collaborator call latencies by port
	CollaboratorLatency *prometheus.HistogramVec

	// Administrative calls by action and result code
	AdminOutcome *prometheus.CounterVec

	TotalIssued   prometheus.Gauge
	Compensations *prometheus.CounterVec
}

// New registers the issuance metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		IssueOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relief_issuance_outcomes_total",
			Help: "Total issue calls by outcome code",
		}, []string{"outcome"}),

		IssueLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "relief_issuance_issue_duration_seconds",
			Help:    "Duration of issue calls including collaborator round trips",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relief_issuance_collaborator_duration_seconds",
			Help:    "Duration of collaborator calls by port",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"port"}), // port: "registry", "oracle", "ledger", "audit"

		AdminOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relief_issuance_admin_operations_total",
			Help: "Total administrative calls by action and outcome code",
		}, []string{"action", "outcome"}),

		TotalIssued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relief_issuance_total_issued",
			Help: "Cumulative amount issued as last committed",
		}),

		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relief_issuance_mint_compensations_total",
			Help: "Mints reversed after a failed issuance, by result",
		}, []string{"result"}), // result: "burned", "failed", "unsupported"
	}
}

func (m *Metrics) IncrementIssueOutcome(outcome string) {
	if m != nil {
		m.IssueOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveIssueLatency(d time.Duration) {
	if m != nil {
		m.IssueLatency.Observe(d.Seconds())
	}
}

// ObserveCollaboratorLatency records the duration of one call to a port.
func (m *Metrics) ObserveCollaboratorLatency(port string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(port).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementAdminOutcome(action, outcome string) {
	if m != nil {
		m.AdminOutcome.WithLabelValues(action, outcome).Inc()
	}
}

func (m *Metrics) SetTotalIssued(total uint64) {
	if m != nil {
		m.TotalIssued.Set(float64(total))
	}
}

func (m *Metrics) IncrementCompensation(result string) {
	if m != nil {
		m.Compensations.WithLabelValues(result).Inc()
	}
}
