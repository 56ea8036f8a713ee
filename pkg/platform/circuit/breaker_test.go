package circuit

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.breaker = New("redis-ratelimit", WithFailureThreshold(3), WithSuccessThreshold(2))
}

func (s *BreakerSuite) fail(n int) (bool, StateChange) {
	var (
		useFallback bool
		change      StateChange
	)
	for range n {
		useFallback, change = s.breaker.RecordFailure()
	}
	return useFallback, change
}

func (s *BreakerSuite) TestStartsClosed() {
	s.Equal(StateClosed, s.breaker.State())
	s.Equal("closed", s.breaker.State().String())
	s.Equal("redis-ratelimit", s.breaker.Name())
}

func (s *BreakerSuite) TestFailuresBelowThresholdStayOnPrimary() {
	useFallback, change := s.fail(2)
	s.False(useFallback)
	s.Equal(StateChange{}, change)
	s.False(s.breaker.IsOpen())
}

func (s *BreakerSuite) TestThresholdOpensOnce() {
	useFallback, change := s.fail(3)
	s.True(useFallback)
	s.True(change.Opened)
	s.Equal("open", s.breaker.State().String())

	useFallback, change = s.breaker.RecordFailure()
	s.True(useFallback)
	s.False(change.Opened, "already open")
}

func (s *BreakerSuite) TestSuccessResetsFailureStreak() {
	s.fail(2)
	usePrimary, _ := s.breaker.RecordSuccess()
	s.True(usePrimary)

	useFallback, _ := s.fail(2)
	s.False(useFallback)
}

func (s *BreakerSuite) TestRecoveryNeedsConsecutiveSuccesses() {
	s.fail(3)

	usePrimary, change := s.breaker.RecordSuccess()
	s.False(usePrimary)
	s.False(change.Closed)

	s.breaker.RecordFailure()
	usePrimary, _ = s.breaker.RecordSuccess()
	s.False(usePrimary, "a failure restarts the success count")

	usePrimary, change = s.breaker.RecordSuccess()
	s.True(usePrimary)
	s.True(change.Closed)
	s.Equal(StateClosed, s.breaker.State())
}

func TestDefaultThresholds(t *testing.T) {
	b := New("defaults", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for range defaultFailureThreshold - 1 {
		if useFallback, _ := b.RecordFailure(); useFallback {
			t.Fatal("opened before the default threshold")
		}
	}
	if _, change := b.RecordFailure(); !change.Opened {
		t.Fatal("expected the default threshold to open the circuit")
	}
}
