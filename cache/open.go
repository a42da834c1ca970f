package cache

import (
	"context"
	"fmt"
	"time"
)

// Options describes the process-wide store built by Open
type Options struct {
	LifeWindow    time.Duration // longest freshness window served from L1
	MaxSizeMB     int
	RedisAddr     string // empty disables L2
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// Open builds the process-wide store: BigCache L1, plus Redis L2 when an
// address is configured. It must be called once at startup and the result
// closed at shutdown.
func Open(ctx context.Context, o Options, opts ...Option) (*Tiered, error) {
	l1, err := NewMemory(ctx, o.LifeWindow, o.MaxSizeMB, opts...)
	if err != nil {
		return nil, err
	}
	stores := []Store{l1}

	if o.RedisAddr != "" {
		client := NewRedisClient(o.RedisAddr, o.RedisPassword, o.RedisDB)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			_ = l1.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", o.RedisAddr, err)
		}
		stores = append(stores, NewRedis(client, o.KeyPrefix, opts...))
	}

	return NewTiered(stores, opts...), nil
}
