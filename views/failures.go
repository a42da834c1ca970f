package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/metrics"
)

const DefaultFailureLogSize = 50

// Failure is one degraded view load
type Failure struct {
	ID      uuid.UUID `json:"id"`
	View    string    `json:"view"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// FailureLog keeps the most recent degraded loads for the debug endpoint.
// A nil *FailureLog still logs and counts failures but keeps nothing.
type FailureLog struct {
	mu      sync.Mutex
	entries []Failure
	next    int
	full    bool
	now     func() time.Time
}

// NewFailureLog keeps up to size failures; size <= 0 uses DefaultFailureLogSize
func NewFailureLog(size int) *FailureLog {
	if size <= 0 {
		size = DefaultFailureLogSize
	}
	return &FailureLog{entries: make([]Failure, size), now: time.Now}
}

// Record logs err for view, bumps the degraded counter and keeps the record
func (l *FailureLog) Record(ctx context.Context, view string, err error) Failure {
	f := Failure{ID: uuid.New(), View: view, Message: err.Error()}
	var ue *coingecko.UpstreamError
	if errors.As(err, &ue) {
		f.Status, f.Message = ue.Status, ue.Message
	}

	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("view", view).
		Int("status", f.Status).
		Str("failure_id", f.ID.String()).
		Msg("view degraded")
	metrics.RecordViewDegraded(view)

	if l == nil {
		f.At = time.Now()
		return f
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f.At = l.now()
	l.entries[l.next] = f
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	return f
}

// Recent returns the kept failures, newest first
func (l *FailureLog) Recent() []Failure {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.entries)
	}
	out := make([]Failure, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.entries[(l.next-i+len(l.entries))%len(l.entries)])
	}
	return out
}
