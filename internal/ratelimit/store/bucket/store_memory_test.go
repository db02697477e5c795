package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"compliance-panel/internal/ratelimit/models"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) fill(key string, n int) *models.Result {
	var res *models.Result
	for range n {
		var err error
		res, err = s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
	return res
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		res := s.fill("first", 1)
		s.True(res.Allowed)
		s.Equal(testLimit, res.Limit)
		s.Equal(testLimit-1, res.Remaining)
		s.Equal(s.now.Add(testWindow), res.ResetAt)
	})

	s.Run("requests up to limit allowed", func() {
		res := s.fill("limit", testLimit)
		s.True(res.Allowed)
		s.Equal(0, res.Remaining)
	})

	s.Run("request over limit denied with retry hint", func() {
		s.fill("over", testLimit)
		res := s.fill("over", 1)
		s.False(res.Allowed)
		s.Equal(0, res.Remaining)
		s.Equal(60, res.RetryAfter)
	})

	s.Run("window slides", func() {
		s.fill("slide", testLimit)
		s.now = s.now.Add(testWindow + time.Second)
		res := s.fill("slide", 1)
		s.True(res.Allowed)
		s.Equal(testLimit-1, res.Remaining)
	})
}

func (s *InMemoryBucketStoreSuite) TestKeysAreIsolated() {
	s.fill("a", testLimit)
	res := s.fill("b", 1)
	s.True(res.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	s.fill("reset", testLimit)
	s.Require().NoError(s.store.Reset(s.ctx, "reset"))
	count, err := s.store.GetCurrentCount(s.ctx, "reset")
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *InMemoryBucketStoreSuite) TestConcurrentAllowNeverExceedsLimit() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "concurrent", testLimit, testWindow)
			s.NoError(err)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
