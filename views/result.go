// Package views turns market data into the shapes each page section renders.
// Adapters never return errors: a failed load is recorded and reported as a
// degraded Result so the caller renders its fallback for that section only.
package views

import (
	"context"
	"time"

	"github.com/briangreenhill/coinpulse/internal/query"
)

//go:generate mockgen -package=mock -destination=mock/fetcher.go . Fetcher

// Fetcher is the cached market data client the adapters load through
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params query.Params, freshness time.Duration, out any) error
}

// Result is either a loaded value or the degraded marker
type Result[T any] struct {
	value T
	ok    bool
}

// Success wraps a loaded value
func Success[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Degraded is the result of a load that failed
func Degraded[T any]() Result[T] {
	return Result[T]{}
}

// Get returns the value and whether the load succeeded
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

// Degraded reports whether the fallback should be rendered
func (r Result[T]) Degraded() bool {
	return !r.ok
}
