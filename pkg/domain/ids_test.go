package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "relief/pkg/domain-errors"
)

// TestParsePrincipal_SecurityInvariants validates trust-boundary parsing rules
// for principal identities.
func TestParsePrincipal_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE claims;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "alice\x00admin", true},
		{"Oversized input", strings.Repeat("a", MaxPrincipalLength+1), true},
		{"Unicode zero-width space", "alice\u200Bbob", true},
		{"Embedded whitespace", "alice bob", true},
		{"Empty string", "", true},

		{"Max length", strings.Repeat("a", MaxPrincipalLength), false},
		{"Stacks-style address", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", false},
		{"Contract principal", "SP000000000000000000002Q6VF78.relief-vouchers", false},
		{"Namespaced id", "ngo:red-cross_01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePrincipal(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, p.String())
		})
	}
}

func TestParseDisasterID(t *testing.T) {
	t.Run("accepts zero and max", func(t *testing.T) {
		d, err := ParseDisasterID("0")
		require.NoError(t, err)
		assert.Equal(t, DisasterID(0), d)

		d, err = ParseDisasterID("18446744073709551615")
		require.NoError(t, err)
		assert.Equal(t, DisasterID(^uint64(0)), d)
	})

	t.Run("rejects negative and overflow", func(t *testing.T) {
		for _, in := range []string{"-1", "18446744073709551616", "1e3", "abc", ""} {
			_, err := ParseDisasterID(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestParseVoucherID(t *testing.T) {
	_, err := ParseVoucherID("0")
	require.Error(t, err)

	v, err := ParseVoucherID("42")
	require.NoError(t, err)
	assert.Equal(t, VoucherID(42), v)
	assert.Equal(t, "42", v.String())
}

// TestTypeDistinction documents that ids are distinct named types.
// var _ VoucherID = DisasterID(1) would not compile.
func TestTypeDistinction(t *testing.T) {
	d := DisasterID(7)
	v := VoucherID(7)
	assert.Equal(t, d.String(), v.String())
	assert.NotEqual(t, any(d), any(v))
}
