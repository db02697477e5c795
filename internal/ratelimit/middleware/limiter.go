package middleware

import (
	"context"
	"log/slog"

	"compliance-panel/internal/ratelimit/metrics"
	"compliance-panel/internal/ratelimit/models"
	"compliance-panel/internal/ratelimit/store/bucket"
	"compliance-panel/pkg/platform/circuit"
)

// Limiter checks a client IP against the budget of an endpoint class.
type Limiter interface {
	CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.Result, bool, error)
}

// ResilientLimiter checks the shared store and falls back to a local
// in-memory store while the shared store keeps failing. The returned bool is
// true when the fallback answered (degraded mode).
type ResilientLimiter struct {
	primary  bucket.Store
	fallback bucket.Store
	breaker  *circuit.Breaker
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type LimiterOption func(*ResilientLimiter)

func WithLogger(logger *slog.Logger) LimiterOption {
	return func(l *ResilientLimiter) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *ResilientLimiter) { l.metrics = m }
}

func WithBreaker(b *circuit.Breaker) LimiterOption {
	return func(l *ResilientLimiter) { l.breaker = b }
}

// NewLimiter wires a primary store with an in-memory fallback. When primary is
// nil the in-memory store is the only store and the breaker is never consulted.
func NewLimiter(primary bucket.Store, limits map[models.EndpointClass]models.Limit, opts ...LimiterOption) *ResilientLimiter {
	l := &ResilientLimiter{
		primary:  primary,
		fallback: bucket.NewInMemoryBucketStore(),
		breaker:  circuit.New("ratelimit"),
		limits:   limits,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ResilientLimiter) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.Result, bool, error) {
	limit, ok := l.limits[class]
	if !ok {
		return &models.Result{Allowed: true}, false, nil
	}
	key := models.NewIPKey(ip, class)

	if l.primary == nil {
		res, err := l.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		return res, false, err
	}

	res, err := l.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	if err != nil {
		l.metrics.IncrementBackendFailures()
		useFallback, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit store failing, switching to in-memory fallback", "error", err)
			l.metrics.SetFallbackActive(true)
		}
		if !useFallback {
			return nil, false, err
		}
		res, err := l.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		return res, true, err
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit store recovered")
		l.metrics.SetFallbackActive(false)
	}
	if !usePrimary {
		res, err := l.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		return res, true, err
	}
	return res, false, nil
}
