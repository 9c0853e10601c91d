// Package cache implements the Redis-backed read-through cache used in front
// of the record store. Entries are never authoritative: anything here can be
// recomputed from the database, and the TTL bounds staleness even when an
// invalidation is skipped or fails.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client and verifies connectivity with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return client, client.Ping(ctx).Err()
}

// Cache wraps a Redis client with a key prefix and JSON serialization.
type Cache struct {
	client *redis.Client
	logger logging.Logger
	prefix string
}

// NewCache constructs a Cache. All keys are namespaced under prefix.
func NewCache(client *redis.Client, logger logging.Logger, prefix string) *Cache {
	return &Cache{
		client: client,
		logger: logger.With("module", "cache"),
		prefix: prefix,
	}
}

func (c *Cache) formatKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get returns the raw cached payload for key, or common.ErrorCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, c.formatKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorCacheMiss
		}
		return "", fmt.Errorf("cache get: %w", err)
	}
	return value, nil
}

// GetObject reads the cached payload for key and unmarshals it into dest.
// A miss is reported as common.ErrorCacheMiss; a corrupt payload is treated
// as a miss too, since the store can always recompute.
func (c *Cache) GetObject(ctx context.Context, key string, dest any) error {
	value, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		c.logger.Warn(ctx, "discarding corrupt cache entry", "key", key, "error", err)
		return common.ErrorCacheMiss
	}
	return nil
}

// Set serializes value as JSON and stores it under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.formatKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes every entry whose key matches the glob pattern,
// e.g. "students:*" after any write to the students collection. Keys are
// walked with SCAN so a large keyspace does not block the server.
func (c *Cache) Invalidate(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, c.formatKey(pattern), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	return nil
}
