package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/briangreenhill/coinpulse/internal/metrics"
)

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)

// Memory is the in-process L1 store backed by BigCache. BigCache evicts
// anything older than the life window; shorter lifetimes are enforced by the
// expiry recorded in each entry.
type Memory struct {
	cache *bigcache.BigCache
	opts  options
}

// NewMemory creates a BigCache-backed store. lifeWindow must cover the
// longest freshness window callers will use.
func NewMemory(ctx context.Context, lifeWindow time.Duration, maxSizeMB int, opts ...Option) (*Memory, error) {
	if lifeWindow <= 0 {
		return nil, errors.New("cache life window must be positive")
	}

	config := bigcache.DefaultConfig(lifeWindow)
	config.Shards = 64
	config.MaxEntriesInWindow = 4096
	config.MaxEntrySize = 8 * 1024
	config.HardMaxCacheSize = maxSizeMB // Size in MB
	config.Verbose = false

	bc, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create bigcache: %w", err)
	}

	return &Memory{cache: bc, opts: newOptions(opts)}, nil
}

// Get retrieves a fresh entry
func (m *Memory) Get(_ context.Context, key string) (*Entry, bool) {
	data, err := m.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.opts.logger.Warn().Err(err).Str("key", key).Msg("failed to decode L1 cache entry")
		metrics.RecordCacheError("l1", "decode")
		_ = m.cache.Delete(key)
		return nil, false
	}

	if !entry.Fresh(m.opts.now()) {
		_ = m.cache.Delete(key)
		return nil, false
	}

	return &entry, true
}

// Set stores body under key for ttl
func (m *Memory) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(newEntry(body, m.opts.now(), ttl))
	if err != nil {
		metrics.RecordCacheError("l1", "encode")
		return fmt.Errorf("encode L1 entry %s: %w", key, err)
	}

	if err := m.cache.Set(key, data); err != nil {
		metrics.RecordCacheError("l1", "upstream")
		return fmt.Errorf("set L1 entry %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry
func (m *Memory) Delete(_ context.Context, key string) error {
	err := m.cache.Delete(key)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Len returns the number of stored entries, fresh or not
func (m *Memory) Len() int {
	return m.cache.Len()
}

// Close releases the BigCache cleanup goroutine
func (m *Memory) Close() error {
	return m.cache.Close()
}
