// Package cache stores completed match results in redis keyed by video ID,
// so repeat queries skip the full pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

const keyPrefix = "covermatch:result:"

// ResultCache caches MatchResults by video ID with a TTL. A nil ResultCache
// is valid and disables caching.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	log    covermatch.Logger
}

// New connects to redis and returns a ResultCache, or an error if the server
// is unreachable. Callers treat a failed connection as "no cache", not as a
// fatal condition.
func New(addr, password string, db int, ttl time.Duration, log covermatch.Logger) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &ResultCache{client: client, ttl: ttl, log: log}, nil
}

// Get returns the cached result for a video ID, or (nil, false) on a miss.
// Redis errors are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, videoID string) (*covermatch.MatchResult, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, keyPrefix+videoID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("result cache read failed for %s: %v", videoID, err)
		}
		return nil, false
	}

	var result covermatch.MatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warnf("result cache holds malformed entry for %s: %v", videoID, err)
		return nil, false
	}
	return &result, true
}

// Put stores a completed result. Failures are logged and ignored; the
// pipeline result has already been delivered to the caller.
func (c *ResultCache) Put(ctx context.Context, videoID string, result *covermatch.MatchResult) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		c.log.Warnf("result cache marshal failed for %s: %v", videoID, err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+videoID, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("result cache write failed for %s: %v", videoID, err)
	}
}

// Close releases the redis connection.
func (c *ResultCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
