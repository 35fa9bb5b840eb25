package service

import (
	"context"
	"encoding/json"
	"errors"
	"go-blog-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis client the services use.
// *redis.Client satisfies it.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cacheGet decodes the JSON value stored under key. Misses, transport errors
// and undecodable entries all report false.
func cacheGet[T any](ctx context.Context, cache ICacheClient, key string) (T, bool) {
	var out T
	if cache == nil {
		return out, false
	}
	raw, err := cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Discarding undecodable cache entry")
		return out, false
	}
	return out, true
}

func cacheSet(ctx context.Context, cache ICacheClient, key string, value any, ttl time.Duration) {
	if cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Failed to encode cache entry")
		return
	}
	if err := cache.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func cacheDel(ctx context.Context, cache ICacheClient, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Cache invalidation failed")
	}
}
