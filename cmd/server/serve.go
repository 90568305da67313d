package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "perfscope/internal/adapters/http"
	"perfscope/internal/config"
	"perfscope/internal/ports"
	"perfscope/internal/services/insights"
	"perfscope/internal/services/profiles"
	"perfscope/internal/services/tests"
	"perfscope/internal/workers/testrunner"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and/or the test processor (see SERVICES)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log, cfg.Store.RunMigrations)
	if err != nil {
		return err
	}
	defer closeStore()

	wakeups, closeWakeups, err := buildWakeups(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeWakeups()

	var processor *testrunner.Processor
	if cfg.Enabled(config.ServiceModeWorker) {
		analyzer, err := buildAnalyzer(cfg, log)
		if err != nil {
			return err
		}
		processor, err = testrunner.New(testrunner.Options{
			Store:        store,
			Analyzer:     analyzer,
			Wakeups:      wakeups,
			Log:          log,
			PollInterval: cfg.Processor.PollInterval,
			BatchSize:    cfg.Processor.BatchSize,
			MaxInFlight:  cfg.Processor.MaxInFlight,
			JobTimeout:   cfg.Processor.JobTimeout,
		})
		if err != nil {
			return err
		}
		// A worker-only process has no submissions to start it lazily.
		if cfg.Processor.AutoStart || !cfg.Enabled(config.ServiceModeHTTP) {
			if err := processor.Start(ctx); err != nil {
				return fmt.Errorf("start processor: %w", err)
			}
		}
		defer func() {
			processor.Stop()
			log.Info("Waiting for in-flight tests")
			processor.Wait()
		}()
	}

	if !cfg.Enabled(config.ServiceModeHTTP) {
		log.WithField("services", cfg.Services).Info("Worker running")
		<-ctx.Done()
		log.Info("Shutting down")
		return nil
	}

	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		return err
	}
	if summarizer == nil {
		log.Warn("GEMINI_API_KEY not set; AI analysis will use the fallback review")
	}

	var starter ports.ProcessorStarter
	if processor != nil {
		starter = processor
	}
	api := httpadapter.New(httpadapter.Options{
		Tests:             tests.New(store, cfg.Analysis.Provider, wakeups, log),
		Profiles:          profiles.New(store),
		Insights:          insights.New(summarizer, store, log),
		Processor:         starter,
		Log:               log,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		SubmitsPerMinute:  cfg.HTTP.SubmitsPerMinute,
		TrustProxyHeaders: cfg.HTTP.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.WithField("addr", cfg.ListenAddr).WithField("services", cfg.Services).Info("Listening")

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown did not complete")
	}
	return nil
}
