package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/coinpulse/cache"
	"github.com/briangreenhill/coinpulse/internal/freshness"
	"github.com/briangreenhill/coinpulse/internal/metrics"
	"github.com/briangreenhill/coinpulse/internal/query"
)

const (
	DefaultBaseURL      = "https://api.coingecko.com/api/v3"
	DefaultAPIKeyHeader = "x-cg-pro-api-key"

	// DefaultFreshness applies when a caller passes no window
	DefaultFreshness = 60 * time.Second
)

// Client issues GET requests against the market data API and keeps decoded
// responses fresh for a per-call window.
type Client struct {
	http    *http.Client
	baseURL string

	apiKeyHeader string
	apiKey       string // empty means no credential header

	store  cache.Store // optional; nil means no cache
	policy *freshness.Policy
	flight *singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithStore caches successful responses in s
func WithStore(s cache.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithAPIKey attaches key under header on every request. An empty header
// falls back to DefaultAPIKeyHeader.
func WithAPIKey(header, key string) Option {
	return func(c *Client) {
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		c.apiKeyHeader, c.apiKey = header, key
	}
}

// WithPolicy lets per-endpoint rules override the window a caller asks for
func WithPolicy(p *freshness.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithSingleFlight collapses concurrent cold requests for the same URL
func WithSingleFlight() Option {
	return func(c *Client) { c.flight = &singleflight.Group{} }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("coingecko: invalid base URL %q", baseURL)
	}

	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type refreshKey struct{}

// Refresh marks ctx so Get skips the cache read and always asks upstream.
// The response is still written back to the store, which is how the
// worker keeps entries warm ahead of their expiry.
func Refresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func refreshing(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// Get fetches endpoint with params and decodes the JSON body into out.
// A cached body younger than freshness is returned without a network call;
// freshness <= 0 means DefaultFreshness. Non-2xx responses become
// *UpstreamError and are never cached.
func (c *Client) Get(ctx context.Context, endpoint string, params query.Params, freshness time.Duration, out any) error {
	reqURL := query.Serialize(c.baseURL, endpoint, params)
	name := endpointName(endpoint)
	log := zerolog.Ctx(ctx)

	if c.store != nil && !refreshing(ctx) {
		if entry, ok := c.store.Get(ctx, reqURL); ok {
			log.Debug().Str("endpoint", name).Msg("market data served from cache")
			return decode(name, entry.Body, out)
		}
	}

	window := c.window(name, freshness)
	body, err := c.load(ctx, name, reqURL, window)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", name).Msg("market data request failed")
		return err
	}
	return decode(name, body, out)
}

// Fetch is Get with the decoded value returned
func Fetch[T any](ctx context.Context, c *Client, endpoint string, params query.Params, freshness time.Duration) (T, error) {
	var out T
	err := c.Get(ctx, endpoint, params, freshness, &out)
	return out, err
}

// Windows used by the typed endpoint wrappers
const (
	CoinFreshness   = DefaultFreshness
	MoversFreshness = 5 * time.Minute
)

// Coin returns the detail document for one coin
func (c *Client) Coin(ctx context.Context, id string, params query.Params) (CoinDetails, error) {
	return Fetch[CoinDetails](ctx, c, CoinEndpoint(id), params, CoinFreshness)
}

// CoinEndpoint is the detail path for id with the ID path-escaped
func CoinEndpoint(id string) string {
	return "coins/" + url.PathEscape(id)
}

// TopGainersLosers returns the day's biggest movers quoted in vsCurrency
func (c *Client) TopGainersLosers(ctx context.Context, vsCurrency string) (TopGainersLosers, error) {
	params := query.Params{}.Set("vs_currency", vsCurrency)
	return Fetch[TopGainersLosers](ctx, c, "coins/top_gainers_losers", params, MoversFreshness)
}

// window picks the cache lifetime: an exact policy rule wins, then a rule
// on the collapsed pattern (coins/{id}), then the caller's request.
func (c *Client) window(name string, requested time.Duration) time.Duration {
	if requested <= 0 {
		requested = DefaultFreshness
	}
	return c.policy.Resolve(name, c.policy.Resolve(endpointPattern(name), requested))
}

func (c *Client) load(ctx context.Context, name, reqURL string, window time.Duration) ([]byte, error) {
	if c.flight == nil {
		return c.fetch(ctx, name, reqURL, window)
	}

	v, err, shared := c.flight.Do(reqURL, func() (any, error) {
		return c.fetch(ctx, name, reqURL, window)
	})
	if shared {
		zerolog.Ctx(ctx).Debug().Str("endpoint", name).Msg("joined in-flight request")
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, name, reqURL string, window time.Duration) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	label := endpointPattern(name)
	done := metrics.TimeUpstream(label)
	resp, err := c.http.Do(req)
	done()
	if err != nil {
		metrics.RecordUpstream(label, 0)
		return nil, fmt.Errorf("GET %s: %w", name, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(label, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(name, resp, body)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode %s: response is not valid JSON", name)
	}

	zerolog.Ctx(ctx).Debug().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Dur("freshness", window).
		Msg("market data fetched")

	if c.store != nil {
		if err := c.store.Set(ctx, reqURL, body, window); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("endpoint", name).Msg("failed to cache response")
		}
	}
	return body, nil
}

func decode(name string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// endpointName is the endpoint path without any embedded query, used for
// logging, metrics and freshness rules.
func endpointName(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return strings.Trim(endpoint, "/")
}

// fixed endpoints under coins/ that are not coin IDs
var coinsCollections = map[string]bool{
	"list":               true,
	"markets":            true,
	"categories":         true,
	"top_gainers_losers": true,
}

// endpointPattern collapses per-coin paths so metric labels stay bounded
// and one policy rule can cover every coin.
func endpointPattern(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) >= 2 && parts[0] == "coins" && !coinsCollections[parts[1]] {
		parts[1] = "{id}"
	}
	return strings.Join(parts, "/")
}
