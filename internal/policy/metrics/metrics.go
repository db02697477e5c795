package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Published  prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_policy_operations_total",
			Help: "Successful policy mutations by operation",
		}, []string{"operation"}),
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "panel_policy_published_total",
			Help: "Number of policy versions published",
		}),
	}
}

func (m *Metrics) IncrementOperation(operation string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementPublished() {
	if m == nil {
		return
	}
	m.Published.Inc()
}
