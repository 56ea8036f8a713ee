//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"relief/internal/platform/config"
	"relief/pkg/testutil/containers"
)

func TestEnsureTopicIsIdempotent(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t)
	cfg := config.KafkaConfig{
		Brokers:       broker.Brokers,
		Topic:         "relief.audit.ensure",
		ConsumerGroup: "ensure-test",
		Partitions:    2,
		Replication:   1,
	}

	producer, err := NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, EnsureTopic(ctx, producer, cfg))
	require.NoError(t, EnsureTopic(ctx, producer, cfg))

	details, err := kadm.NewClient(producer).ListTopics(ctx, cfg.Topic)
	require.NoError(t, err)
	assert.Len(t, details[cfg.Topic].Partitions, 2)

	res := producer.ProduceSync(ctx, &kgo.Record{Value: []byte("ping")})
	require.NoError(t, res.FirstErr())
}
