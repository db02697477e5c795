package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations  *prometheus.CounterVec
	Impressions *prometheus.CounterVec
	// EmbedRejections counts embed requests refused for a bad token or an
	// inactive widget.
	EmbedRejections *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_widget_operations_total",
			Help: "Successful widget mutations by operation",
		}, []string{"operation"}),
		Impressions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_widget_impressions_total",
			Help: "Widget impressions by device class",
		}, []string{"device_class"}),
		EmbedRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_widget_embed_rejections_total",
			Help: "Embed requests refused, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementOperation(operation string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementImpression(deviceClass string) {
	if m == nil {
		return
	}
	m.Impressions.WithLabelValues(deviceClass).Inc()
}

func (m *Metrics) IncrementEmbedRejection(reason string) {
	if m == nil {
		return
	}
	m.EmbedRejections.WithLabelValues(reason).Inc()
}
