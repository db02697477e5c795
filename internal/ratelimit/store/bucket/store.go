// Package bucket stores sliding-window request counters.
package bucket

import (
	"context"
	"time"

	"compliance-panel/internal/ratelimit/models"
)

// Store is implemented by the in-memory and Redis bucket stores.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
	Reset(ctx context.Context, key string) error
}

var (
	_ Store = (*InMemoryBucketStore)(nil)
	_ Store = (*RedisBucketStore)(nil)
)
