package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
)

func TestAllocationRuleAmount(t *testing.T) {
	t.Run("base plus severity times multiplier", func(t *testing.T) {
		rule := AllocationRule{DisasterID: 1, BaseAmount: 100, SeverityMultiplier: 20}
		amount, err := rule.Amount(5)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), amount)
	})

	t.Run("multiplication overflow", func(t *testing.T) {
		rule := AllocationRule{SeverityMultiplier: math.MaxUint64}
		_, err := rule.Amount(2)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	t.Run("addition overflow", func(t *testing.T) {
		rule := AllocationRule{BaseAmount: math.MaxUint64, SeverityMultiplier: 1}
		_, err := rule.Amount(1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
	})

	t.Run("largest representable amount", func(t *testing.T) {
		rule := AllocationRule{BaseAmount: math.MaxUint64 - 10, SeverityMultiplier: 2}
		amount, err := rule.Amount(5)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), amount)
	})
}

func TestNewClaim(t *testing.T) {
	claim, err := NewClaim("alice", 1, 200, 10, []byte("household of 4"))
	require.NoError(t, err)
	assert.Equal(t, id.Height(10), claim.ClaimedAt)
	assert.Equal(t, id.Height(10+1440), claim.ExpiresAt)
	assert.False(t, claim.ExpiredAt(1449))
	assert.True(t, claim.ExpiredAt(1450))

	_, err = NewClaim("alice", 1, 200, id.Height(math.MaxUint64-1000), nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidExpiration))
}

func TestNewClaimCopiesMetadata(t *testing.T) {
	meta := []byte("abc")
	claim, err := NewClaim("alice", 1, 1, 0, meta)
	require.NoError(t, err)
	meta[0] = 'z'
	assert.Equal(t, []byte("abc"), claim.Metadata)
}

func TestEngineStateWithIssuance(t *testing.T) {
	state := NewEngineState("admin", DefaultMaxPerVictim, DefaultMinSeverity)

	next, vid, err := state.WithIssuance(200)
	require.NoError(t, err)
	assert.Equal(t, id.VoucherID(1), vid)
	assert.Equal(t, uint64(200), next.TotalIssued)
	assert.Equal(t, id.VoucherID(2), next.NextVoucherID)
	assert.Equal(t, uint64(0), state.TotalIssued, "receiver is not mutated")

	full := &EngineState{TotalIssued: math.MaxUint64, NextVoucherID: 1}
	_, _, err = full.WithIssuance(1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAmount))
}
