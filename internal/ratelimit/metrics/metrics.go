package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions       *prometheus.CounterVec
	FallbackActive  prometheus.Gauge
	BackendFailures prometheus.Counter
}

// New registers the rate limiting collectors on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "panel_ratelimit_fallback_active",
			Help: "1 while the shared limiter circuit is open and the in-memory fallback is serving",
		}),
		BackendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "panel_ratelimit_backend_failures_total",
			Help: "Errors returned by the shared rate limit store",
		}),
	}
}

func (m *Metrics) ObserveDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

func (m *Metrics) IncrementBackendFailures() {
	if m == nil {
		return
	}
	m.BackendFailures.Inc()
}
