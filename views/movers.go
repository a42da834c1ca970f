package views

import (
	"context"
	"strings"

	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/query"
)

const (
	MoversView      = "movers"
	MoversFreshness = coingecko.MoversFreshness
)

// Mover is one row of the gainers or losers table
type Mover struct {
	ID        string
	Name      string
	Symbol    string
	Image     string
	Price     float64
	Change24h float64
	Volume24h float64
	Rank      int
}

// Up reports whether the asset gained over the last 24h
func (m Mover) Up() bool {
	return m.Change24h > 0
}

// MoverLists holds both ranked lists as returned upstream
type MoverLists struct {
	Currency string
	Gainers  []Mover
	Losers   []Mover
}

// For returns the list shown under tab
func (l MoverLists) For(tab Tab) []Mover {
	if tab == TabLosers {
		return l.Losers
	}
	return l.Gainers
}

// Movers loads the top gainers and losers. The upstream endpoint is tier
// gated; a denied request degrades like any other failure.
type Movers struct {
	Fetcher  Fetcher
	Currency string // defaults to format.DefaultCurrency
	Failures *FailureLog
}

// Load returns both lists
func (m *Movers) Load(ctx context.Context) Result[MoverLists] {
	cur := strings.ToLower(currencyOrDefault(m.Currency))

	var resp coingecko.TopGainersLosers
	params := query.Params{}.Set("vs_currency", cur)
	if err := m.Fetcher.Get(ctx, "coins/top_gainers_losers", params, MoversFreshness, &resp); err != nil {
		m.Failures.Record(ctx, MoversView, err)
		return Degraded[MoverLists]()
	}

	return Success(MoverLists{
		Currency: strings.ToUpper(cur),
		Gainers:  toMovers(resp.TopGainers, cur),
		Losers:   toMovers(resp.TopLosers, cur),
	})
}

func toMovers(in []coingecko.TopMover, cur string) []Mover {
	out := make([]Mover, 0, len(in))
	for _, c := range in {
		out = append(out, Mover{
			ID:        c.ID,
			Name:      c.Name,
			Symbol:    strings.ToUpper(c.Symbol),
			Image:     c.Image,
			Price:     c.Price(cur),
			Change24h: c.Change24h(cur),
			Volume24h: c.Volume24h(cur),
			Rank:      c.MarketCapRank,
		})
	}
	return out
}
