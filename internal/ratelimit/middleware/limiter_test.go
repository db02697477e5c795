package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-panel/internal/ratelimit/models"
	"compliance-panel/internal/ratelimit/store/bucket"
	"compliance-panel/pkg/platform/circuit"
)

type flakyStore struct {
	err   error
	inner *bucket.InMemoryBucketStore
	calls int
}

func (f *flakyStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.inner.Allow(ctx, key, limit, window)
}

func (f *flakyStore) Reset(ctx context.Context, key string) error { return f.inner.Reset(ctx, key) }

var testLimits = map[models.EndpointClass]models.Limit{
	models.ClassResolve: {RequestsPerWindow: 2, Window: time.Minute},
}

func TestResilientLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("memory only when no primary", func(t *testing.T) {
		l := NewLimiter(nil, testLimits)
		for range 2 {
			res, degraded, err := l.CheckIP(ctx, "192.0.2.1", models.ClassResolve)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.False(t, degraded)
		}
		res, _, err := l.CheckIP(ctx, "192.0.2.1", models.ClassResolve)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	t.Run("unknown class is unlimited", func(t *testing.T) {
		l := NewLimiter(nil, testLimits)
		res, _, err := l.CheckIP(ctx, "192.0.2.1", models.ClassEmbed)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("errors surface until the circuit opens, then fallback serves", func(t *testing.T) {
		store := &flakyStore{err: errors.New("connection refused"), inner: bucket.NewInMemoryBucketStore()}
		l := NewLimiter(store, testLimits, WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2))))

		_, _, err := l.CheckIP(ctx, "192.0.2.2", models.ClassResolve)
		require.Error(t, err)

		res, degraded, err := l.CheckIP(ctx, "192.0.2.2", models.ClassResolve)
		require.NoError(t, err)
		assert.True(t, degraded)
		assert.True(t, res.Allowed)
	})

	t.Run("recovers after consecutive successes", func(t *testing.T) {
		store := &flakyStore{err: errors.New("timeout"), inner: bucket.NewInMemoryBucketStore()}
		breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(2))
		l := NewLimiter(store, map[models.EndpointClass]models.Limit{
			models.ClassResolve: {RequestsPerWindow: 100, Window: time.Minute},
		}, WithBreaker(breaker))

		_, degraded, err := l.CheckIP(ctx, "192.0.2.3", models.ClassResolve)
		require.NoError(t, err)
		assert.True(t, degraded)

		store.err = nil
		_, degraded, _ = l.CheckIP(ctx, "192.0.2.3", models.ClassResolve)
		assert.True(t, degraded, "first success keeps the circuit open")
		_, degraded, _ = l.CheckIP(ctx, "192.0.2.3", models.ClassResolve)
		assert.False(t, degraded)
		assert.False(t, breaker.IsOpen())
	})
}
