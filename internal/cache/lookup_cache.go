package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Lookup keys for the catalog reference tables.
const (
	KeyGrades     = "lookup:grades"
	KeySubjects   = "lookup:subjects"
	KeyCategories = "lookup:categories"
)

// LookupCache caches the grade, subject and category listings. The tables are
// seeded out-of-band and never written by the API, so entries simply expire.
type LookupCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewLookupCache creates a new LookupCache.
func NewLookupCache(redis *RedisClient, ttl time.Duration) *LookupCache {
	return &LookupCache{redis: redis, ttl: ttl}
}

// Get decodes the cached value of key into dest. It returns false on a miss
// or on any cache error; errors are logged, never returned.
func (c *LookupCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if !IsMiss(err) {
			log.Warn().Err(err).Str("key", key).Msg("lookup cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("lookup cache entry corrupt")
		return false
	}
	return true
}

// Set stores value under key with the cache TTL.
func (c *LookupCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup data: %w", err)
	}
	if err := c.redis.Set(ctx, key, string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to set lookup key: %w", err)
	}
	return nil
}

// Invalidate drops all cached lookups.
func (c *LookupCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, KeyGrades, KeySubjects, KeyCategories)
}
