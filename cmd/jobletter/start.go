package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobletter/jobletter/internal/api"
	"github.com/jobletter/jobletter/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the acquisition daemon and API server",
	Long:  "Run recurring acquisition cycles and serve the shortlist API; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"cycle_interval", cfg.CycleInterval.String(),
		"providers", len(cfg.Providers),
		"queries", len(cfg.Search.Queries),
		"locations", len(cfg.Search.Locations),
		"daily_limit", cfg.Budget.DailyLimit,
		"hourly_limit", cfg.Budget.HourlyLimit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs, profiles, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer jobs.Close()

	cache, err := openCache(ctx, cfg)
	if err != nil {
		logger.Error("failed to open dedup cache", "error", err)
		os.Exit(1)
	}

	adapters := buildAdapters(cfg, defaultHTTPClient(), logger)
	if len(adapters) == 0 {
		logger.Error("no providers to poll")
		os.Exit(1)
	}

	sched := scheduler.New(
		buildAcquireEngine(cfg, cache, logger),
		adapters,
		buildSearchPlan(cfg),
		jobs,
		cache,
		cfg.CycleInterval,
		cfg.SweepInterval,
		logger,
	)
	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	svc := api.NewService(jobs, profiles, buildMatchEngine(cfg), cfg.Shortlist.PoolWindow, cfg.Shortlist.PoolLimit)
	handler := api.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("api listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown forced", "error", err)
	}

	logger.Info("goodbye")
	return nil
}
