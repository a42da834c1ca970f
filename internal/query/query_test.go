package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://api.coingecko.com/api/v3"

func TestSerialize(t *testing.T) {
	empty := ""
	var nilStr *string

	tests := []struct {
		name     string
		base     string
		endpoint string
		params   Params
		expected string
	}{
		{"no params", base, "coins/bitcoin", nil, base + "/coins/bitcoin"},
		{"leading slash", base, "/coins/bitcoin", nil, base + "/coins/bitcoin"},
		{"trailing slash on base", base + "/", "/coins/bitcoin", nil, base + "/coins/bitcoin"},
		{
			"single param",
			base, "coins/bitcoin",
			Params{}.Set("dex_pair_format", "symbol"),
			base + "/coins/bitcoin?dex_pair_format=symbol",
		},
		{
			"keeps insertion order",
			base, "coins/markets",
			Params{}.Set("vs_currency", "usd").Set("per_page", 10).Set("order", "market_cap_desc"),
			base + "/coins/markets?vs_currency=usd&per_page=10&order=market_cap_desc",
		},
		{
			"drops empty and absent",
			base, "coins/markets",
			Params{}.Set("a", "").Set("b", nil).Set("c", &empty).Set("d", nilStr).Set("e", "x"),
			base + "/coins/markets?e=x",
		},
		{
			"all dropped leaves no question mark",
			base, "coins/markets",
			Params{}.Set("a", "").Set("b", nil),
			base + "/coins/markets",
		},
		{
			"escapes values",
			base, "search",
			Params{}.Set("query", "bit coin&eth=1"),
			base + "/search?query=bit%20coin%26eth%3D1",
		},
		{
			"scalars",
			base, "x",
			Params{}.Set("b", true).Set("f", 0.5).Set("i", int64(-3)),
			base + "/x?b=true&f=0.5&i=-3",
		},
		{
			"embedded query kept and overridden",
			base, "/coins/top_gainers_losers?vs_currency=usd&duration=24h",
			Params{}.Set("vs_currency", "eur").Set("top_coins", "300"),
			base + "/coins/top_gainers_losers?vs_currency=eur&duration=24h&top_coins=300",
		},
		{
			"embedded empty value dropped",
			base, "coins/list?include_platform=",
			nil,
			base + "/coins/list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Serialize(tt.base, tt.endpoint, tt.params)
			assert.Equal(t, tt.expected, got)

			_, err := url.Parse(got)
			require.NoError(t, err)
		})
	}
}

func TestSerializeNeverSendsEmptyKeys(t *testing.T) {
	values := []any{"", nil, (*string)(nil), (*int)(nil), (*float64)(nil), (*bool)(nil)}
	for _, v := range values {
		got := Serialize(base, "coins", Params{}.Set("skip", v).Set("keep", "1"))
		u, err := url.Parse(got)
		require.NoError(t, err)

		q := u.Query()
		assert.False(t, q.Has("skip"), "value %#v should be omitted, got %s", v, got)
		assert.Equal(t, "1", q.Get("keep"))
	}
}

func TestParamsSetDoesNotAlias(t *testing.T) {
	p := Params{}.Set("a", "1")
	p1 := p.Set("b", "2")
	p2 := p.Set("a", "9")

	v, ok := p.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Len(t, p1, 2)

	v, _ = p2.Get("a")
	assert.Equal(t, "9", v)
}
