package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts relay throughput. A nil *Metrics records nothing.
type Metrics struct {
	Published prometheus.Counter
	Failures  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "relief_outbox_published_total",
			Help: "Total number of outbox rows published to Kafka",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "relief_outbox_batch_failures_total",
			Help: "Total number of outbox relay batches that failed",
		}),
	}
}

func (m *Metrics) addPublished(n int) {
	if m != nil && n > 0 {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) incFailures() {
	if m != nil {
		m.Failures.Inc()
	}
}
