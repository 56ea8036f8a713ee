package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
)

const keyPrefix = "relief:oracle:disaster:"

// RedisCache is a read-through cache in front of an oracle. Only active
// statuses are stored, so a newly declared disaster is seen on the next
// lookup. Cache faults are logged and bypassed; only the upstream oracle can
// fail a lookup.
type RedisCache struct {
	next   ports.EventOracle
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(next ports.EventOracle, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(disasterID id.DisasterID) string {
	return keyPrefix + disasterID.String()
}

func (c *RedisCache) DisasterStatus(ctx context.Context, disasterID id.DisasterID) (*ports.DisasterStatus, error) {
	key := cacheKey(disasterID)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached statusResponse
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached.toStatus(), nil
		}
		c.logger.WarnContext(ctx, "discarding malformed cached disaster status", "disaster_id", disasterID)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "oracle cache read failed", "disaster_id", disasterID, "error", err)
	}

	status, err := c.next.DisasterStatus(ctx, disasterID)
	if err != nil {
		return nil, err
	}
	if status == nil || !status.Active {
		return status, nil
	}

	payload, err := json.Marshal(fromStatus(status))
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "oracle cache write failed", "disaster_id", disasterID, "error", err)
	}
	return status, nil
}
