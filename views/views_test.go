package views_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/metrics"
	"github.com/briangreenhill/coinpulse/internal/query"
	"github.com/briangreenhill/coinpulse/views"
	"github.com/briangreenhill/coinpulse/views/mock"
)

// respondWith decodes body into the adapter's out value
func respondWith(body string) func(context.Context, string, query.Params, time.Duration, any) error {
	return func(_ context.Context, _ string, _ query.Params, _ time.Duration, out any) error {
		return json.Unmarshal([]byte(body), out)
	}
}

func TestOverviewLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)

	params := query.Params{}.Set("dex_pair_format", "symbol")
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/bitcoin", params, views.OverviewFreshness, gomock.Any()).
		DoAndReturn(respondWith(`{"name":"Bitcoin","symbol":"btc","image":{"large":"https://img/btc.png"},"market_data":{"current_price":{"usd":65000}}}`))

	o := &views.Overview{Fetcher: fetcher}
	res := o.Load(context.Background())

	got, ok := res.Get()
	require.True(t, ok)
	assert.False(t, res.Degraded())
	assert.Equal(t, "Bitcoin", got.DisplayName)
	assert.Equal(t, "BTC", got.Symbol)
	assert.Equal(t, "$65,000.00", got.Price)
	assert.Equal(t, "https://img/btc.png", got.Image)
	assert.Equal(t, "bitcoin", got.ID)
}

func TestOverviewLoadCoinEscapesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/a%2Fb", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(respondWith(`{"id":"a/b","name":"AB","symbol":"ab"}`))

	o := &views.Overview{Fetcher: fetcher}
	got, ok := o.LoadCoin(context.Background(), "a/b").Get()
	require.True(t, ok)
	assert.Equal(t, "$0.00", got.Price)
}

func TestOverviewDegradesOnRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&coingecko.UpstreamError{Status: http.StatusTooManyRequests, Message: "rate limited", Endpoint: "coins/bitcoin"})

	failures := views.NewFailureLog(10)
	before := testutil.ToFloat64(metrics.ViewDegraded.WithLabelValues(views.OverviewView))

	o := &views.Overview{Fetcher: fetcher, Failures: failures}
	res := o.Load(context.Background())

	assert.True(t, res.Degraded())
	recent := failures.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, views.OverviewView, recent[0].View)
	assert.Equal(t, http.StatusTooManyRequests, recent[0].Status)
	assert.Equal(t, "rate limited", recent[0].Message)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ViewDegraded.WithLabelValues(views.OverviewView)))
}

func TestOverviewDegradesAgainstRealClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	client, err := coingecko.New(srv.URL)
	require.NoError(t, err)

	failures := views.NewFailureLog(10)
	o := &views.Overview{Fetcher: client, Failures: failures}

	assert.True(t, o.Load(context.Background()).Degraded())
	require.Len(t, failures.Recent(), 1)
	assert.Equal(t, "rate limited", failures.Recent()[0].Message)
}

func TestMoversLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)

	params := query.Params{}.Set("vs_currency", "usd")
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/top_gainers_losers", params, views.MoversFreshness, gomock.Any()).
		DoAndReturn(respondWith(`{
			"top_gainers": [
				{"id":"pepe","symbol":"pepe","name":"Pepe","image":"p.png","market_cap_rank":30,"usd":0.5,"usd_24h_vol":1000,"usd_24h_change":42.5},
				{"id":"wif","symbol":"wif","name":"dogwifhat","image":"w.png","market_cap_rank":50,"usd":2,"usd_24h_vol":500,"usd_24h_change":12}
			],
			"top_losers": []
		}`))

	m := &views.Movers{Fetcher: fetcher}
	lists, ok := m.Load(context.Background()).Get()
	require.True(t, ok)

	require.Len(t, lists.Gainers, 2)
	assert.Equal(t, views.Mover{
		ID: "pepe", Name: "Pepe", Symbol: "PEPE", Image: "p.png",
		Price: 0.5, Change24h: 42.5, Volume24h: 1000, Rank: 30,
	}, lists.Gainers[0])
	assert.Equal(t, "wif", lists.Gainers[1].ID)
	assert.True(t, lists.Gainers[0].Up())

	assert.NotNil(t, lists.Losers)
	assert.Empty(t, lists.For(views.TabLosers))
	assert.Len(t, lists.For(views.TabGainers), 2)
	assert.Equal(t, "USD", lists.Currency)
}

func TestMoversUsesConfiguredCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), "coins/top_gainers_losers", query.Params{}.Set("vs_currency", "eur"), gomock.Any(), gomock.Any()).
		DoAndReturn(respondWith(`{"top_gainers":null,"top_losers":[{"id":"x","eur":3,"eur_24h_change":-4,"usd":99}]}`))

	m := &views.Movers{Fetcher: fetcher, Currency: "EUR"}
	lists, ok := m.Load(context.Background()).Get()
	require.True(t, ok)

	assert.NotNil(t, lists.Gainers)
	assert.Empty(t, lists.Gainers)
	require.Len(t, lists.Losers, 1)
	assert.Equal(t, 3.0, lists.Losers[0].Price)
	assert.False(t, lists.Losers[0].Up())
}

func TestMoversDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("dial tcp: connection refused"))

	failures := views.NewFailureLog(10)
	m := &views.Movers{Fetcher: fetcher, Failures: failures}

	assert.True(t, m.Load(context.Background()).Degraded())
	recent := failures.Recent()
	require.Len(t, recent, 1)
	assert.Zero(t, recent[0].Status)
	assert.Contains(t, recent[0].Message, "connection refused")
}

func TestMoversDegradesWithoutFailureLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mock.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&coingecko.UpstreamError{Status: http.StatusUnauthorized, Message: "Unauthorized"})

	m := &views.Movers{Fetcher: fetcher}
	assert.True(t, m.Load(context.Background()).Degraded())
}
