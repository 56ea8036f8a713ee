//go:build integration

package oracle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"relief/internal/issuance/ports"
	"relief/internal/issuance/ports/mocks"
	"relief/internal/oracle"
	id "relief/pkg/domain"
	"relief/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestReadThrough() {
	ctrl := gomock.NewController(s.T())
	next := mocks.NewMockEventOracle(ctrl)
	cache := oracle.NewRedisCache(next, s.redis.Client, time.Minute, nil)
	ctx := context.Background()

	want := &ports.DisasterStatus{Active: true, Severity: 5, StartHeight: 10}
	next.EXPECT().DisasterStatus(gomock.Any(), id.DisasterID(7)).Return(want, nil).Times(1)

	for i := 0; i < 3; i++ {
		got, err := cache.DisasterStatus(ctx, 7)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *RedisCacheSuite) TestInactiveStatusIsNotCached() {
	ctrl := gomock.NewController(s.T())
	next := mocks.NewMockEventOracle(ctrl)
	cache := oracle.NewRedisCache(next, s.redis.Client, time.Minute, nil)
	ctx := context.Background()

	gomock.InOrder(
		next.EXPECT().DisasterStatus(gomock.Any(), id.DisasterID(9)).Return(&ports.DisasterStatus{}, nil),
		next.EXPECT().DisasterStatus(gomock.Any(), id.DisasterID(9)).Return(&ports.DisasterStatus{Active: true, Severity: 6, StartHeight: 20}, nil),
	)

	got, err := cache.DisasterStatus(ctx, 9)
	s.Require().NoError(err)
	s.False(got.Active)

	exists, err := s.redis.Client.Exists(ctx, "relief:oracle:disaster:9").Result()
	s.Require().NoError(err)
	s.Zero(exists)

	got, err = cache.DisasterStatus(ctx, 9)
	s.Require().NoError(err)
	s.True(got.Active)
	s.Equal(uint64(6), got.Severity)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctrl := gomock.NewController(s.T())
	next := mocks.NewMockEventOracle(ctrl)
	cache := oracle.NewRedisCache(next, s.redis.Client, time.Second, nil)
	ctx := context.Background()

	next.EXPECT().DisasterStatus(gomock.Any(), id.DisasterID(3)).Return(&ports.DisasterStatus{Active: true, Severity: 4}, nil).Times(1)
	_, err := cache.DisasterStatus(ctx, 3)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.TTL(ctx, "relief:oracle:disaster:3").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Second)
}
