package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coinpulse/internal/app"
	"github.com/briangreenhill/coinpulse/internal/config"
	"github.com/briangreenhill/coinpulse/panels"
	"github.com/briangreenhill/coinpulse/views"
)

const version = "CoinPulse v0.1.0"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	if err := runCLI(ctx, os.Args[1:], os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("coinpulse failed")
	}
}

func runCLI(ctx context.Context, args []string, out io.Writer) error {
	command := "overview"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "help", "--help", "-h":
		printUsage(out)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintln(out, version)
		return nil
	}

	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}
	return runWithPanel(ctx, command, arg, out)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: coinpulse [command]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  overview [coin-id]        Show the price card (default: OVERVIEW_COIN_ID)")
	fmt.Fprintln(out, "  movers [gainers|losers]   Show the top gainers or losers")
	fmt.Fprintln(out, "  help, -h                  Show this help message")
	fmt.Fprintln(out, "  version, -v               Show the version")
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintln(out, "  COINGECKO_BASE_URL        Market data API origin (required)")
	fmt.Fprintln(out, "  COINGECKO_API_KEY         API credential, sent when COINGECKO_ATTACH_API_KEY=true")
	fmt.Fprintln(out, "  VS_CURRENCY               Pricing currency (default usd)")
	fmt.Fprintln(out, "  REDIS_ADDR                Shared cache (optional)")
}

// setupPanelRegistry creates and configures all available panels
func setupPanelRegistry(ctx context.Context) (*panels.Registry, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := zerolog.Ctx(ctx).With().Logger()
	store, err := app.OpenCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close cache")
		}
	}

	client, err := app.NewClient(cfg, store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	registry := panels.NewRegistry()
	registry.Register(panels.NewOverview(&views.Overview{
		Fetcher:  client,
		CoinID:   cfg.Views.OverviewCoinID,
		Currency: cfg.Views.VSCurrency,
	}))
	registry.Register(panels.NewMovers(&views.Movers{
		Fetcher:  client,
		Currency: cfg.Views.VSCurrency,
	}))
	return registry, closeStore, nil
}

// runWithPanel renders the named panel to out
func runWithPanel(ctx context.Context, name, arg string, out io.Writer) error {
	registry, cleanup, err := setupPanelRegistry(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	panel, exists := registry.GetPanel(name)
	if !exists {
		return fmt.Errorf("unknown command: %s (available: %s)", name, strings.Join(registry.List(), ", "))
	}

	var output string
	if arg != "" {
		output, err = panel.Get(ctx, arg)
	} else {
		output, err = panel.Default(ctx)
	}

	fmt.Fprint(out, output)
	if err != nil && !errors.Is(err, panels.ErrUnavailable) {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return err
}
