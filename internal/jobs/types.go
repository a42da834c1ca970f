package jobs

const (
	TaskWarmOverview = "warm:overview"
	TaskWarmMovers   = "warm:movers"
)

// WarmOverviewPayload names the coin whose card is refreshed
type WarmOverviewPayload struct {
	CoinID string `json:"coin_id"`
}

// WarmMoversPayload names the pricing currency of the movers lists
type WarmMoversPayload struct {
	Currency string `json:"currency"`
}
