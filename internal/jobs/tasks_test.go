package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/briangreenhill/coinpulse/cache"
	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/query"
	"github.com/briangreenhill/coinpulse/views"
	"github.com/briangreenhill/coinpulse/views/mock"
)

func TestNewWarmTasks(t *testing.T) {
	task, err := NewWarmOverviewTask("ethereum")
	require.NoError(t, err)
	assert.Equal(t, TaskWarmOverview, task.Type())

	var op WarmOverviewPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &op))
	assert.Equal(t, "ethereum", op.CoinID)

	task, err = NewWarmMoversTask("usd")
	require.NoError(t, err)
	assert.Equal(t, TaskWarmMovers, task.Type())

	var mp WarmMoversPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &mp))
	assert.Equal(t, "usd", mp.Currency)
}

func TestHandleWarmOverview(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/ethereum", gomock.Any(), views.OverviewFreshness, gomock.Any()).
		Return(nil)

	w := &Warmer{Fetcher: fetcher, Logger: zerolog.Nop()}
	task, err := NewWarmOverviewTask("ethereum")
	require.NoError(t, err)

	assert.NoError(t, w.HandleWarmOverview(context.Background(), task))
}

func TestHandleWarmMoversDegradedIsNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/top_gainers_losers", query.Params{}.Set("vs_currency", "usd"), views.MoversFreshness, gomock.Any()).
		Return(&coingecko.UpstreamError{Status: 401, Message: "Unauthorized"})

	failures := views.NewFailureLog(5)
	w := &Warmer{Fetcher: fetcher, Failures: failures, Logger: zerolog.Nop()}
	task, err := NewWarmMoversTask("usd")
	require.NoError(t, err)

	assert.NoError(t, w.HandleWarmMovers(context.Background(), task))
	require.Len(t, failures.Recent(), 1)
	assert.Equal(t, views.MoversView, failures.Recent()[0].View)
}

func TestHandleWarmBadPayload(t *testing.T) {
	w := &Warmer{Logger: zerolog.Nop()}

	err := w.HandleWarmMovers(context.Background(), asynq.NewTask(TaskWarmMovers, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = w.HandleWarmOverview(context.Background(), asynq.NewTask(TaskWarmOverview, []byte("nope")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestRegister(t *testing.T) {
	mux := asynq.NewServeMux()
	(&Warmer{Logger: zerolog.Nop()}).Register(mux)

	h, pattern := mux.Handler(asynq.NewTask(TaskWarmMovers, nil))
	assert.NotNil(t, h)
	assert.Equal(t, TaskWarmMovers, pattern)
}

func TestWarmKeepsCacheFresh(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"bitcoin","name":"Bitcoin","market_data":{"current_price":{"usd":65000}}}`))
	}))
	t.Cleanup(srv.Close)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store, err := cache.NewMemory(context.Background(), 10*time.Minute, 8, cache.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client, err := coingecko.New(srv.URL, coingecko.WithStore(store))
	require.NoError(t, err)

	w := &Warmer{Fetcher: client, Logger: zerolog.Nop()}
	task, err := NewWarmOverviewTask("bitcoin")
	require.NoError(t, err)

	require.NoError(t, w.HandleWarmOverview(context.Background(), task))
	now = now.Add(views.OverviewFreshness - 100*time.Millisecond)
	require.NoError(t, w.HandleWarmOverview(context.Background(), task))
	assert.Equal(t, int32(2), hits.Load(), "a warm run must not be served from cache")

	// past the first entry's expiry a page load still hits the cache
	now = now.Add(200 * time.Millisecond)
	o := &views.Overview{Fetcher: client, CoinID: "bitcoin"}
	card, ok := o.Load(context.Background()).Get()
	require.True(t, ok)
	assert.Equal(t, "Bitcoin", card.DisplayName)
	assert.Equal(t, int32(2), hits.Load())
}
