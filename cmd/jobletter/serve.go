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
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shortlist API without acquiring",
	Long:  "Serve the HTTP API over an existing job corpus; no acquisition cycles run.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs, profiles, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer jobs.Close()

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
	return nil
}
