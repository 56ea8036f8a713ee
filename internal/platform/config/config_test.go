package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("ENGINE_ADMIN", "relief.admin")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, uint64(1000), cfg.Engine.MaxPerVictim)
	assert.Equal(t, uint64(3), cfg.Engine.MinSeverity)
	assert.Equal(t, time.Minute, cfg.Clock.Interval)
	assert.Equal(t, int64(0), cfg.Clock.Genesis.Unix())
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("ENGINE_INITIAL_FUNDS", "18446744073709551615")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CLOCK_GENESIS", "2026-01-01T00:00:00Z")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ^uint64(0), cfg.Engine.InitialFunds)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2026, cfg.Clock.Genesis.Year())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}, "unknown STORAGE_DRIVER"},
		{"negative amount", map[string]string{"ENGINE_MAX_PER_VICTIM": "-1"}, "ENGINE_MAX_PER_VICTIM"},
		{"bad genesis", map[string]string{"CLOCK_GENESIS": "yesterday"}, "CLOCK_GENESIS"},
		{"kafka without postgres", map[string]string{"KAFKA_BROKERS": "k:9092"}, "KAFKA_BROKERS"},
		{"missing admin", map[string]string{"ENGINE_ADMIN": ""}, "ENGINE_ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
