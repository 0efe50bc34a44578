package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "clearfashion:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL. It returns nil when the URL is empty or
// the server does not answer, so callers run without caching.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) *RedisCache {
	if redisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[cache] failed to parse redis url: %v", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] redis connection failed: %v", err)
		_ = client.Close()
		return nil
	}
	log.Printf("[cache] redis connected, db=%d ttl=%s", opt.DB, ttl)
	return NewWithClient(client, ttl)
}

func NewWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

// PageKey names a cached page of the product source.
func PageKey(page, size int) string {
	return fmt.Sprintf("%sproducts:p%d:s%d", keyPrefix, page, size)
}

// Load decodes the value stored under key into dst. A miss is (false, nil).
func (r *RedisCache) Load(ctx context.Context, key string, dst any) (bool, error) {
	if !r.IsAvailable() {
		return false, errors.New("redis client not available")
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Store(ctx context.Context, key string, v any) error {
	if !r.IsAvailable() {
		return errors.New("redis client not available")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisCache) Close() error {
	if !r.IsAvailable() {
		return nil
	}
	return r.client.Close()
}
