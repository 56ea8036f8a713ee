package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/platform/config"
)

func TestOpenPoolRejectsMalformedDSN(t *testing.T) {
	_, err := OpenPool(context.Background(), config.Storage{PostgresDSN: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse pool config")
}
