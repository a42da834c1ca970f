package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/views"
)

// NewWarmOverviewTask refreshes the overview card for coinID. Warming is
// attempted once; the next scheduled run covers a failure.
func NewWarmOverviewTask(coinID string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmOverviewPayload{CoinID: coinID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmOverview, payload, asynq.MaxRetry(0)), nil
}

// NewWarmMoversTask refreshes the movers lists in currency
func NewWarmMoversTask(currency string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmMoversPayload{Currency: currency})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmMovers, payload, asynq.MaxRetry(0)), nil
}

// Warmer runs the view adapters so the shared cache holds fresh responses
// before a page asks for them. Warm requests always go upstream and write
// back, so each run restarts the entry's window.
type Warmer struct {
	Fetcher  views.Fetcher
	Failures *views.FailureLog
	Logger   zerolog.Logger
}

// Register adds the warm handlers to mux
func (w *Warmer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskWarmOverview, w.HandleWarmOverview)
	mux.HandleFunc(TaskWarmMovers, w.HandleWarmMovers)
}

func (w *Warmer) HandleWarmOverview(ctx context.Context, t *asynq.Task) error {
	var p WarmOverviewPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", TaskWarmOverview, err, asynq.SkipRetry)
	}

	ctx = w.Logger.With().Str("task", TaskWarmOverview).Str("coin_id", p.CoinID).Logger().WithContext(ctx)
	ctx = coingecko.Refresh(ctx)
	o := &views.Overview{Fetcher: w.Fetcher, CoinID: p.CoinID, Failures: w.Failures}
	if o.Load(ctx).Degraded() {
		// already logged and counted by the adapter
		return nil
	}
	zerolog.Ctx(ctx).Info().Msg("overview warmed")
	return nil
}

func (w *Warmer) HandleWarmMovers(ctx context.Context, t *asynq.Task) error {
	var p WarmMoversPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", TaskWarmMovers, err, asynq.SkipRetry)
	}

	ctx = w.Logger.With().Str("task", TaskWarmMovers).Str("currency", p.Currency).Logger().WithContext(ctx)
	ctx = coingecko.Refresh(ctx)
	m := &views.Movers{Fetcher: w.Fetcher, Currency: p.Currency, Failures: w.Failures}
	lists, ok := m.Load(ctx).Get()
	if !ok {
		return nil
	}
	zerolog.Ctx(ctx).Info().
		Int("gainers", len(lists.Gainers)).
		Int("losers", len(lists.Losers)).
		Msg("movers warmed")
	return nil
}
