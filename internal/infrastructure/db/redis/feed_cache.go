package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const feedCacheKey = "feed:available"

// FeedCache stores the last successful availability feed response in Redis.
type FeedCache struct {
	client *redis.Client
	key    string
}

var _ ports.FeedCache = (*FeedCache)(nil)

// NewFeedCache creates a FeedCache wrapping the given Redis client.
func NewFeedCache(client *redis.Client) *FeedCache {
	return &FeedCache{client: client, key: feedCacheKey}
}

// Get returns the cached payload and whether it was present.
func (c *FeedCache) Get(ctx context.Context) (json.RawMessage, bool, error) {
	b, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("feed cache get: %w", err)
	}
	return json.RawMessage(b), true, nil
}

// Set stores the payload; it expires after ttl.
func (c *FeedCache) Set(ctx context.Context, payload json.RawMessage, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key, []byte(payload), ttl).Err(); err != nil {
		return fmt.Errorf("feed cache set: %w", err)
	}
	return nil
}
