package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/payflow/payflow-api/internal/pkg/logger"
)

// Cache stores computed stats in Redis. Entries are keyed by a per-merchant
// generation counter, so Invalidate is one INCR instead of a key scan.
// A nil client disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a stats cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func generationKey(merchantID uuid.UUID) string {
	return "stats:gen:" + merchantID.String()
}

func (c *Cache) entryKey(ctx context.Context, merchantID uuid.UUID, period Period) (string, error) {
	gen, err := c.client.Get(ctx, generationKey(merchantID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("stats:%s:%d:%s", merchantID, gen, period.key()), nil
}

// Get returns the cached stats, nil on miss or when disabled.
func (c *Cache) Get(ctx context.Context, merchantID uuid.UUID, period Period) *Stats {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.entryKey(ctx, merchantID, period)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("stats cache: read generation")
		return nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn().Err(err).Msg("stats cache: get")
		}
		return nil
	}
	var s Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// Set stores s for the period.
func (c *Cache) Set(ctx context.Context, merchantID uuid.UUID, period Period, s *Stats) {
	if c == nil || c.client == nil {
		return
	}
	key, err := c.entryKey(ctx, merchantID, period)
	if err != nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("stats cache: set")
	}
}

// Invalidate drops every cached period for the merchant.
func (c *Cache) Invalidate(ctx context.Context, merchantID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey(merchantID)).Err(); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("merchant_id", merchantID.String()).Msg("stats cache: invalidate")
	}
}
