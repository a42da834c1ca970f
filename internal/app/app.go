// Package app wires configuration into the shared cache and market data
// client used by every entry point.
package app

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coinpulse/cache"
	"github.com/briangreenhill/coinpulse/coingecko"
	"github.com/briangreenhill/coinpulse/internal/config"
	"github.com/briangreenhill/coinpulse/internal/freshness"
)

// NewLogger returns a timestamped logger at the configured level
func NewLogger(w io.Writer, level string) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		logger = logger.Level(lvl)
	}
	return logger
}

// OpenCache builds the process-wide response store. Close it at shutdown.
func OpenCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cache.Tiered, error) {
	return cache.Open(ctx, cache.Options{
		LifeWindow:    cfg.Cache.MaxWindow,
		MaxSizeMB:     cfg.Cache.MaxSizeMB,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		KeyPrefix:     cfg.Redis.KeyPrefix,
	}, cache.WithLogger(logger))
}

// NewClient builds the market data client over store
func NewClient(cfg *config.Config, store cache.Store) (*coingecko.Client, error) {
	opts := []coingecko.Option{coingecko.WithStore(store)}
	if key := cfg.APIKey(); key != "" {
		opts = append(opts, coingecko.WithAPIKey(cfg.CoinGecko.APIKeyHeader, key))
	}
	if cfg.Cache.SingleFlight {
		opts = append(opts, coingecko.WithSingleFlight())
	}
	if cfg.Cache.PolicyFile != "" {
		policy, err := freshness.Load(cfg.Cache.PolicyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, coingecko.WithPolicy(policy))
	}
	return coingecko.New(cfg.CoinGecko.BaseURL, opts...)
}
