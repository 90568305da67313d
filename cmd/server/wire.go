package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"perfscope/internal/adapters/gemini"
	"perfscope/internal/adapters/pagespeed"
	pg "perfscope/internal/adapters/postgres"
	redisadapter "perfscope/internal/adapters/redis"
	"perfscope/internal/adapters/sqlite"
	"perfscope/internal/adapters/webpagetest"
	"perfscope/internal/config"
	"perfscope/internal/logger"
	"perfscope/internal/ports"
	"perfscope/internal/workers/testrunner"
)

// bootstrap loads configuration and builds the logger; --log-level wins over LOG_LEVEL.
func bootstrap() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		if _, err := logrus.ParseLevel(logLevel); err != nil {
			return cfg, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		cfg.Log.Level = logLevel
	}
	return cfg, logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}), nil
}

// openStore connects the configured store. migrate controls whether the
// Postgres migrations run; SQLite always migrates its schema on open.
func openStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger, migrate bool) (ports.TestRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Warn("Failed to close database")
			}
		}, nil
	default:
		db, err := pg.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		if migrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("db migrate: %w", err)
			}
			log.Info("Database migrations applied")
		}
		return db, db.Close, nil
	}
}

func buildAnalyzer(cfg config.Config, log logrus.FieldLogger) (ports.Analyzer, error) {
	switch cfg.Analysis.Provider {
	case config.ProviderWebPageTest:
		return webpagetest.New(webpagetest.Config{
			APIKey:  cfg.Analysis.WebPageTestAPIKey,
			BaseURL: cfg.Analysis.WebPageTestBaseURL,
		}, log)
	default:
		return pagespeed.New(pagespeed.Config{
			APIKey:  cfg.Analysis.PageSpeedAPIKey,
			BaseURL: cfg.Analysis.PageSpeedBaseURL,
		}, log)
	}
}

// buildSummarizer returns nil without a Gemini key, in which case every
// analysis is the fallback.
func buildSummarizer(cfg config.Config) (ports.Summarizer, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, nil
	}
	return gemini.New(gemini.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model})
}

type wakeupBus interface {
	ports.WakeupPublisher
	ports.WakeupSource
}

// buildWakeups uses Redis when REDIS_URL is set and an in-process bus otherwise.
func buildWakeups(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (wakeupBus, func(), error) {
	if cfg.RedisURL == "" {
		return testrunner.NewLocalWakeups(), func() {}, nil
	}
	client, err := redisadapter.NewClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return redisadapter.NewWakeups(client, log), func() { _ = client.Close() }, nil
}
