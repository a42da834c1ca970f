// Package cache provides the process-wide response store shared by every
// upstream call. Entries are keyed by the fully resolved request URL and
// expire purely by time.
package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Entry represents a cached response body with its lifetime. Body holds the
// exact bytes received from upstream.
type Entry struct {
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Fresh reports whether the entry may still be served at now
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Remaining returns how long the entry stays fresh after now
func (e *Entry) Remaining(now time.Time) time.Duration {
	if !e.Fresh(now) {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the entry and true only if it exists and is still fresh
	Get(ctx context.Context, key string) (*Entry, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Set stores body under key for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store is the main interface that combines all cache operations
type Store interface {
	Reader
	Writer
	Close() error
}

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a store
type Option func(*options)

// WithClock overrides the time source used for freshness checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for store errors
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func newEntry(body []byte, now time.Time, ttl time.Duration) Entry {
	return Entry{
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
