package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/briangreenhill/coinpulse/internal/metrics"
)

// Ensure Tiered implements Store
var _ Store = (*Tiered)(nil)

// Tiered tries each store in order. A hit in a later level is copied back
// into the earlier levels for whatever lifetime it has left.
type Tiered struct {
	stores []Store
	opts   options
}

// NewTiered creates a Tiered store over stores, fastest first
func NewTiered(stores []Store, opts ...Option) *Tiered {
	return &Tiered{stores: stores, opts: newOptions(opts)}
}

// Get retrieves the entry from the first level that has it
func (t *Tiered) Get(ctx context.Context, key string) (*Entry, bool) {
	for i, s := range t.stores {
		entry, ok := s.Get(ctx, key)
		if !ok {
			continue
		}

		metrics.RecordCacheHit(level(i))
		if remaining := entry.Remaining(t.opts.now()); remaining > 0 {
			for j := 0; j < i; j++ {
				if err := t.stores[j].Set(ctx, key, entry.Body, remaining); err != nil {
					t.opts.logger.Warn().Err(err).Str("key", key).Str("level", level(j)).Msg("cache backfill failed")
				}
			}
		}
		return entry, true
	}

	metrics.RecordCacheMiss()
	return nil, false
}

// Set stores body in every level
func (t *Tiered) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	var errs []error
	for i, s := range t.stores {
		if err := s.Set(ctx, key, body, ttl); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", level(i), err))
		}
	}
	return errors.Join(errs...)
}

// Delete removes key from every level
func (t *Tiered) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, s := range t.stores {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every level
func (t *Tiered) Close() error {
	var errs []error
	for _, s := range t.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Levels returns the number of stores
func (t *Tiered) Levels() int {
	return len(t.stores)
}

func level(i int) string {
	return fmt.Sprintf("l%d", i+1)
}
