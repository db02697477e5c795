package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the country resolution chain.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	StepFailures       *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
}

// New registers the jurisdiction metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_jurisdiction_resolutions_total",
			Help: "Country resolutions by the chain step that produced them",
		}, []string{"source"}),
		StepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_jurisdiction_step_failures_total",
			Help: "Failed resolution steps by step and reason",
		}, []string{"step", "reason"}),
		ResolutionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_jurisdiction_resolution_duration_seconds",
			Help:    "Duration of a full ResolveCountry chain",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}
}

func (m *Metrics) ObserveResolution(source string, start time.Time) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(source).Inc()
	m.ResolutionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementStepFailure(step, reason string) {
	if m == nil {
		return
	}
	m.StepFailures.WithLabelValues(step, reason).Inc()
}
