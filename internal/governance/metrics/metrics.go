package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the governance module. Methods are
// nil-safe so tests can skip registration.
type Metrics struct {
	Scheduled prometheus.Counter
	Executed  prometheus.Counter
	Cancelled prometheus.Counter
}

// New registers the governance metrics on the default registry. Call once,
// from main.
func New() *Metrics {
	return &Metrics{
		Scheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caplock_governance_scheduled_total",
			Help: "Total governance operations scheduled",
		}),
		Executed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caplock_governance_executed_total",
			Help: "Total governance operations executed",
		}),
		Cancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caplock_governance_cancelled_total",
			Help: "Total governance operations cancelled",
		}),
	}
}

func (m *Metrics) RecordScheduled() {
	if m != nil {
		m.Scheduled.Inc()
	}
}

func (m *Metrics) RecordExecuted() {
	if m != nil {
		m.Executed.Inc()
	}
}

func (m *Metrics) RecordCancelled() {
	if m != nil {
		m.Cancelled.Inc()
	}
}
