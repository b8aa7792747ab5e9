// file: internals/features/audits/cache/threshold_cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ThresholdCache is a read-through cache in front of the threshold table.
// A miss is (0, false, nil).
type ThresholdCache interface {
	Get(ctx context.Context, schemaID int64, sectionID *int64) (int, bool, error)
	Set(ctx context.Context, schemaID int64, sectionID *int64, grade int) error
	InvalidateSchema(ctx context.Context, schemaID int64) error
}

const keyPrefix = "audit:threshold"

func Key(schemaID int64, sectionID *int64) string {
	if sectionID == nil {
		return fmt.Sprintf("%s:%d:overall", keyPrefix, schemaID)
	}
	return fmt.Sprintf("%s:%d:section:%d", keyPrefix, schemaID, *sectionID)
}

type RedisThresholdCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisThresholdCache(client *redis.Client, ttl time.Duration) *RedisThresholdCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisThresholdCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisThresholdCache) Get(ctx context.Context, schemaID int64, sectionID *int64) (int, bool, error) {
	raw, err := c.client.Get(ctx, Key(schemaID, sectionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	grade, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached grade %q: %w", raw, err)
	}
	return grade, true, nil
}

func (c *RedisThresholdCache) Set(ctx context.Context, schemaID int64, sectionID *int64, grade int) error {
	return c.client.Set(ctx, Key(schemaID, sectionID), strconv.Itoa(grade), c.ttl).Err()
}

func (c *RedisThresholdCache) InvalidateSchema(ctx context.Context, schemaID int64) error {
	pattern := fmt.Sprintf("%s:%d:*", keyPrefix, schemaID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Noop is used when no redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, int64, *int64) (int, bool, error) { return 0, false, nil }
func (Noop) Set(context.Context, int64, *int64, int) error         { return nil }
func (Noop) InvalidateSchema(context.Context, int64) error         { return nil }
