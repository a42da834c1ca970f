package coingecko

import (
	"encoding/json"
	"strings"
)

// CoinDetails is the subset of the coin detail payload the views read.
// Unknown fields are ignored and missing ones stay zero.
type CoinDetails struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketCapRank int `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		MarketCap                map[string]float64 `json:"market_cap"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// TopGainersLosers is the combined ranked-movers payload
type TopGainersLosers struct {
	TopGainers []TopMover `json:"top_gainers"`
	TopLosers  []TopMover `json:"top_losers"`
}

// TopMover is one ranked asset. Price, volume and change are keyed by the
// requested currency upstream ("usd", "usd_24h_vol", "usd_24h_change") and
// are kept in Quotes.
type TopMover struct {
	ID            string
	Symbol        string
	Name          string
	Image         string
	MarketCapRank int
	Quotes        map[string]float64
}

// UnmarshalJSON tolerates missing and mistyped fields; anything that does
// not decode is left at its zero value.
func (m *TopMover) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.Quotes = make(map[string]float64)
	for k, v := range raw {
		switch k {
		case "id":
			_ = json.Unmarshal(v, &m.ID)
		case "symbol":
			_ = json.Unmarshal(v, &m.Symbol)
		case "name":
			_ = json.Unmarshal(v, &m.Name)
		case "image":
			_ = json.Unmarshal(v, &m.Image)
		case "market_cap_rank":
			_ = json.Unmarshal(v, &m.MarketCapRank)
		default:
			var f float64
			if err := json.Unmarshal(v, &f); err == nil {
				m.Quotes[k] = f
			}
		}
	}
	return nil
}

// Price returns the price in currency
func (m TopMover) Price(currency string) float64 {
	return m.Quotes[strings.ToLower(currency)]
}

// Volume24h returns the 24h volume in currency
func (m TopMover) Volume24h(currency string) float64 {
	return m.Quotes[strings.ToLower(currency)+"_24h_vol"]
}

// Change24h returns the 24h change percentage in currency
func (m TopMover) Change24h(currency string) float64 {
	return m.Quotes[strings.ToLower(currency)+"_24h_change"]
}
