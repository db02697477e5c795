package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "panel_client_operations_total",
			Help: "Successful client mutations by operation",
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementOperation(operation string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation).Inc()
}
