package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodePaused, "issuance is paused")
		assert.True(t, HasCode(err, CodePaused))
		assert.False(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("issue: %w", New(CodeAlreadyClaimed, "claim exists"))
		assert.True(t, HasCode(err, CodeAlreadyClaimed))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestErrorIs(t *testing.T) {
	err := New(CodeMetadataTooLong, "metadata exceeds 256 bytes")
	require.ErrorIs(t, err, New(CodeMetadataTooLong, "metadata exceeds 256 bytes"))
	assert.NotErrorIs(t, err, New(CodeMetadataTooLong, "other message"))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeExternalFailure, "registry lookup failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeExternalFailure, CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIssuanceCodesAreDistinct(t *testing.T) {
	seen := make(map[Code]bool, len(IssuanceCodes))
	for _, c := range IssuanceCodes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 13)
}
