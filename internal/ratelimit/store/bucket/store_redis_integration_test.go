//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"compliance-panel/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestAllowUntilLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "rl:ip:test:resolve", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(3-(i+1), res.Remaining)
	}

	res, err := s.store.Allow(ctx, "rl:ip:test:resolve", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "rl:ip:reset:embed", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "rl:ip:reset:embed"))

	res, err := s.store.Allow(ctx, "rl:ip:reset:embed", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
