// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`

	// DebugEndpoints exposes /debug/failures, which echoes upstream
	// error messages. Keep it off on public listeners.
	DebugEndpoints bool `env:"DEBUG_ENDPOINTS" envDefault:"false"`

	CoinGecko CoinGeckoConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Session   SessionConfig
	Views     ViewsConfig
}

// CoinGeckoConfig holds the upstream market data API settings
type CoinGeckoConfig struct {
	BaseURL      string `env:"COINGECKO_BASE_URL" validate:"required,url"`
	APIKey       string `env:"COINGECKO_API_KEY"`
	AttachAPIKey bool   `env:"COINGECKO_ATTACH_API_KEY" envDefault:"false"`
	APIKeyHeader string `env:"COINGECKO_API_KEY_HEADER" envDefault:"x-cg-pro-api-key" validate:"required"`
}

// CacheConfig sizes the response cache
type CacheConfig struct {
	MaxSizeMB    int           `env:"CACHE_MAX_SIZE_MB" envDefault:"64" validate:"gte=1"`
	MaxWindow    time.Duration `env:"CACHE_MAX_WINDOW" envDefault:"10m" validate:"gt=0"`
	SingleFlight bool          `env:"CACHE_SINGLE_FLIGHT" envDefault:"false"`
	PolicyFile   string        `env:"CACHE_POLICY_FILE"`
}

// RedisConfig enables the shared L2 cache and the worker queue
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"coinpulse:"`
}

// SessionConfig holds cookie session settings
type SessionConfig struct {
	Lifetime     time.Duration `env:"SESSION_LIFETIME" envDefault:"12h" validate:"gt=0"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// ViewsConfig selects what the overview card and movers table show
type ViewsConfig struct {
	OverviewCoinID string `env:"OVERVIEW_COIN_ID" envDefault:"bitcoin" validate:"required"`
	VSCurrency     string `env:"VS_CURRENCY" envDefault:"usd" validate:"required,alpha"`
}

// ConfigurationError is a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field string // environment variable name
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

var (
	ErrRequired = errors.New("required")
	ErrInvalid  = errors.New("invalid")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// envNames maps struct field names to the variables they are read from
var envNames = map[string]string{
	"LogLevel":       "LOG_LEVEL",
	"DebugEndpoints": "DEBUG_ENDPOINTS",
	"BaseURL":        "COINGECKO_BASE_URL",
	"AttachAPIKey":   "COINGECKO_ATTACH_API_KEY",
	"APIKeyHeader":   "COINGECKO_API_KEY_HEADER",
	"MaxSizeMB":      "CACHE_MAX_SIZE_MB",
	"MaxWindow":      "CACHE_MAX_WINDOW",
	"SingleFlight":   "CACHE_SINGLE_FLIGHT",
	"Addr":           "REDIS_ADDR",
	"DB":             "REDIS_DB",
	"Lifetime":       "SESSION_LIFETIME",
	"CookieSecure":   "COOKIE_SECURE",
	"OverviewCoinID": "OVERVIEW_COIN_ID",
	"VSCurrency":     "VS_CURRENCY",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, parseError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting. The credential is only required when it is
// actually attached to upstream requests.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := envName(fe.StructField())
			if fe.Tag() == "required" {
				return &ConfigurationError{Field: field, Err: ErrRequired}
			}
			return &ConfigurationError{Field: field, Err: fmt.Errorf("%w: failed %q", ErrInvalid, fe.Tag())}
		}
		return &ConfigurationError{Field: "config", Err: err}
	}

	if c.CoinGecko.AttachAPIKey && c.CoinGecko.APIKey == "" {
		return &ConfigurationError{Field: "COINGECKO_API_KEY", Err: ErrRequired}
	}
	return nil
}

// HasRedis returns true if the shared cache and worker queue are configured
func (c *Config) HasRedis() bool {
	return c.Redis.Addr != ""
}

// APIKey returns the credential to attach, or empty when attachment is off
func (c *Config) APIKey() string {
	if !c.CoinGecko.AttachAPIKey {
		return ""
	}
	return c.CoinGecko.APIKey
}

func parseError(err error) error {
	var agg env.AggregateError
	if errors.As(err, &agg) && len(agg.Errors) > 0 {
		first := agg.Errors[0]
		var pe env.ParseError
		if errors.As(first, &pe) {
			return &ConfigurationError{Field: envName(pe.Name), Err: fmt.Errorf("%w: %v", ErrInvalid, pe.Err)}
		}
		return &ConfigurationError{Field: "env", Err: first}
	}
	return &ConfigurationError{Field: "env", Err: err}
}
