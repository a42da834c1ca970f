package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/briangreenhill/coinpulse/views"
)

// Overview prints the summary card for a coin
type Overview struct {
	View *views.Overview
}

func NewOverview(v *views.Overview) *Overview {
	return &Overview{View: v}
}

func (p *Overview) Name() string { return "overview" }

func (p *Overview) Default(ctx context.Context) (string, error) {
	return p.render(p.View.Load(ctx))
}

func (p *Overview) Get(ctx context.Context, coinID string) (string, error) {
	return p.render(p.View.LoadCoin(ctx, coinID))
}

func (p *Overview) render(res views.Result[views.CoinSummary]) (string, error) {
	coin, ok := res.Get()
	if !ok {
		return "Coin overview is unavailable right now.\n", ErrUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s / %s\n", coin.DisplayName, coin.Symbol)
	fmt.Fprintf(&b, "%s\n", coin.Price)
	return b.String(), nil
}
