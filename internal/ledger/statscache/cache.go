// Package statscache caches the platform rollup in Redis. Stats are global
// aggregates, not per-member derived status, so a short TTL of staleness is
// acceptable; member standing is always computed live.
package statscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"carepool/internal/ledger/models"
)

const statsKey = "carepool:platform:stats"

// Redis is a read-through cache over the ledger store's Stats query.
// Failures degrade to cache misses; the cache never makes a query fail.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (c *Redis) Get(ctx context.Context) (models.Stats, bool) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.WarnContext(ctx, "stats cache read failed", "error", err)
		}
		return models.Stats{}, false
	}
	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "stats cache entry corrupt", "error", err)
		}
		return models.Stats{}, false
	}
	return stats, true
}

func (c *Redis) Set(ctx context.Context, stats models.Stats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "stats cache write failed", "error", err)
	}
}
