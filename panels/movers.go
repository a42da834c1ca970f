package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/briangreenhill/coinpulse/views"
)

// Movers prints the top gainers or losers table
type Movers struct {
	View *views.Movers
}

func NewMovers(v *views.Movers) *Movers {
	return &Movers{View: v}
}

func (p *Movers) Name() string { return "movers" }

func (p *Movers) Default(ctx context.Context) (string, error) {
	return p.Get(ctx, views.TabGainers.String())
}

// Get renders the list for tab, "gainers" or "losers"
func (p *Movers) Get(ctx context.Context, tab string) (string, error) {
	t, err := views.ParseTab(tab)
	if err != nil {
		return "", err
	}
	toggle := views.NewToggle(t)

	lists, ok := p.View.Load(ctx).Get()
	if !ok {
		return "Top gainers and losers are unavailable right now.\n", ErrUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", toggle.Active().Title())
	tbl := views.MoverTable(lists, toggle.Active())
	if tbl.Empty() {
		b.WriteString("No coins to show.\n")
		return b.String(), nil
	}
	if err := tbl.WriteText(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
