package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/coinpulse/internal/app"
	"github.com/briangreenhill/coinpulse/internal/config"
	"github.com/briangreenhill/coinpulse/internal/jobs"
	"github.com/briangreenhill/coinpulse/views"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.HasRedis() {
		logger.Fatal().Msg("REDIS_ADDR is required for the worker")
	}
	logger = app.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			"warm":    10, // higher priority
			"default": 5,
		},
		Logger:   asynqLogger{logger},
		LogLevel: asynq.WarnLevel,
	})
	mux := asynq.NewServeMux()
	warmer := &jobs.Warmer{
		Fetcher:  client,
		Failures: views.NewFailureLog(views.DefaultFailureLogSize),
		Logger:   logger,
	}
	warmer.Register(mux)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: asynqLogger{logger}, LogLevel: asynq.WarnLevel})
	if err := schedule(scheduler, cfg); err != nil {
		logger.Fatal().Err(err).Msg("schedule warm tasks")
	}

	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	defer scheduler.Shutdown()

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	logger.Info().Msg("worker running")

	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker stopped")
}

// schedule registers the periodic warm tasks. Each fires ahead of its view's
// freshness window and bypasses the cache read, so a reader never finds the
// entry expired between runs.
func schedule(s *asynq.Scheduler, cfg *config.Config) error {
	overview, err := jobs.NewWarmOverviewTask(cfg.Views.OverviewCoinID)
	if err != nil {
		return err
	}
	if _, err := s.Register("@every "+warmInterval(views.OverviewFreshness).String(), overview, asynq.Queue("warm")); err != nil {
		return err
	}

	movers, err := jobs.NewWarmMoversTask(cfg.Views.VSCurrency)
	if err != nil {
		return err
	}
	if _, err := s.Register("@every "+warmInterval(views.MoversFreshness).String(), movers, asynq.Queue("warm")); err != nil {
		return err
	}
	return nil
}

// warmInterval leaves a tenth of the window as lead time for the upstream call
func warmInterval(window time.Duration) time.Duration {
	return window - window/10
}
