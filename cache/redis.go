package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/briangreenhill/coinpulse/internal/metrics"
)

//go:generate mockgen -package=mock -source=redis.go -destination=mock/redis_client.go

// RedisClient is the subset of *redis.Client used by the L2 store
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Ensure Redis implements Store
var _ Store = (*Redis)(nil)

// Redis is the shared L2 store. Keys carry a native TTL equal to the
// freshness window so a second process or the worker sees the same lifetime.
type Redis struct {
	client RedisClient
	prefix string
	opts   options
}

// NewRedisClient creates a go-redis client for the given server
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedis creates an L2 store. Every key is stored under prefix.
func NewRedis(client RedisClient, prefix string, opts ...Option) *Redis {
	return &Redis{client: client, prefix: prefix, opts: newOptions(opts)}
}

// Get retrieves a fresh entry
func (r *Redis) Get(ctx context.Context, key string) (*Entry, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.opts.logger.Warn().Err(err).Str("key", key).Msg("L2 cache get error")
		metrics.RecordCacheError("l2", "upstream")
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.opts.logger.Warn().Err(err).Str("key", key).Msg("failed to decode L2 cache entry")
		metrics.RecordCacheError("l2", "decode")
		_ = r.client.Del(ctx, r.prefix+key).Err()
		return nil, false
	}

	if !entry.Fresh(r.opts.now()) {
		return nil, false
	}
	return &entry, true
}

// Set stores body under key with a native expiration of ttl
func (r *Redis) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(newEntry(body, r.opts.now(), ttl))
	if err != nil {
		metrics.RecordCacheError("l2", "encode")
		return fmt.Errorf("encode L2 entry %s: %w", key, err)
	}

	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		metrics.RecordCacheError("l2", "upstream")
		return fmt.Errorf("set L2 entry %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
