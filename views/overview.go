package views

import (
	"context"
	"strings"

	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/format"
	"github.com/briangreenhill/coinpulse/internal/query"
)

const (
	OverviewView      = "overview"
	OverviewFreshness = coingecko.CoinFreshness
	DefaultCoinID     = "bitcoin"
)

// CoinSummary is the overview card
type CoinSummary struct {
	ID          string
	DisplayName string
	Symbol      string
	Price       string
	Image       string
}

// Overview loads the summary card for a single coin
type Overview struct {
	Fetcher  Fetcher
	CoinID   string // defaults to DefaultCoinID
	Currency string // defaults to format.DefaultCurrency
	Failures *FailureLog
}

// Load returns the summary for the configured coin
func (o *Overview) Load(ctx context.Context) Result[CoinSummary] {
	return o.LoadCoin(ctx, o.CoinID)
}

// LoadCoin returns the summary for id
func (o *Overview) LoadCoin(ctx context.Context, id string) Result[CoinSummary] {
	if id == "" {
		id = DefaultCoinID
	}
	cur := currencyOrDefault(o.Currency)

	var coin coingecko.CoinDetails
	params := query.Params{}.Set("dex_pair_format", "symbol")
	if err := o.Fetcher.Get(ctx, coingecko.CoinEndpoint(id), params, OverviewFreshness, &coin); err != nil {
		o.Failures.Record(ctx, OverviewView, err)
		return Degraded[CoinSummary]()
	}

	if coin.ID == "" {
		coin.ID = id
	}
	return Success(CoinSummary{
		ID:          coin.ID,
		DisplayName: coin.Name,
		Symbol:      strings.ToUpper(coin.Symbol),
		Price:       format.Currency(coin.MarketData.CurrentPrice[strings.ToLower(cur)], cur),
		Image:       coin.Image.Large,
	})
}

func currencyOrDefault(c string) string {
	if c == "" {
		return format.DefaultCurrency
	}
	return c
}
