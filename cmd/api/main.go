// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/coinpulse/internal/app"
	"github.com/briangreenhill/coinpulse/internal/config"
	"github.com/briangreenhill/coinpulse/internal/http/routes"
	"github.com/briangreenhill/coinpulse/views"
	"github.com/briangreenhill/coinpulse/web"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = app.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache
	store, err := app.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache error")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("close cache")
		}
	}()

	client, err := app.NewClient(cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("market data client error")
	}

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.Session.Lifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = cfg.Session.CookieSecure

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatal().Err(err).Msg("parse templates")
	}

	failures := views.NewFailureLog(views.DefaultFailureLogSize)

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:     sess,
		Tmpl:     tmpl,
		Overview: &views.Overview{Fetcher: client, CoinID: cfg.Views.OverviewCoinID, Currency: cfg.Views.VSCurrency, Failures: failures},
		Movers:   &views.Movers{Fetcher: client, Currency: cfg.Views.VSCurrency, Failures: failures},
		Failures: failures,
		Debug:    cfg.DebugEndpoints,
	})

	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(s.Router)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.NewHandler(logger)(h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           sess.LoadAndSave(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting app")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("stopped")
}
