package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobletter/jobletter/internal/acquire"
	"github.com/jobletter/jobletter/internal/budget"
	"github.com/jobletter/jobletter/internal/config"
	"github.com/jobletter/jobletter/internal/dedup"
	"github.com/jobletter/jobletter/internal/match"
	"github.com/jobletter/jobletter/internal/model"
	"github.com/jobletter/jobletter/internal/provider"
	"github.com/jobletter/jobletter/internal/rotation"
	"github.com/jobletter/jobletter/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobletter",
	Short: "Job listing acquisition and matching pipeline",
	Long:  "Jobletter polls job boards on a budget, deduplicates listings and matches them to subscriber profiles.",
	// Default to `start` so that `jobletter` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBLETTER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBLETTER_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBLETTER_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openStore picks the configured persistence backend. The returned store
// serves both jobs and profiles.
func openStore(ctx context.Context, cfg *config.Config) (model.JobStore, model.ProfileStore, error) {
	switch cfg.Store.Backend {
	case "postgres":
		s, err := store.NewPostgresStore(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

// openCache picks the configured dedup backend.
func openCache(ctx context.Context, cfg *config.Config) (dedup.Cache, error) {
	if cfg.Dedup.Backend == "redis" {
		return dedup.NewRedisCache(ctx, cfg.Dedup.RedisURL, cfg.Dedup.Retention)
	}
	return dedup.NewMemoryCache(cfg.Dedup.Retention), nil
}

func buildAdapters(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.ProviderAdapter {
	var adapters []model.ProviderAdapter
	for _, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}
		switch p.Name {
		case "adzuna":
			adapters = append(adapters, provider.NewAdzunaAdapter(p.AppID, p.AppKey, p.Country, httpClient))
		case "remotive":
			adapters = append(adapters, provider.NewRemotiveAdapter(httpClient))
		case "remoteok":
			adapters = append(adapters, provider.NewRemoteOKAdapter(httpClient))
		default:
			logger.Warn("unsupported provider, skipping", "provider", p.Name)
			continue
		}
		logger.Info("registered provider", "provider", p.Name)
	}
	return adapters
}

func buildAcquireEngine(cfg *config.Config, cache dedup.Cache, logger *slog.Logger) *acquire.Engine {
	locations := make([]rotation.Location, 0, len(cfg.Search.Locations))
	for _, l := range cfg.Search.Locations {
		locations = append(locations, rotation.Location{Name: l.Name, Weight: l.Weight})
	}

	return acquire.NewEngine(
		budget.NewManager(cfg.Budget.DailyLimit, cfg.Budget.HourlyLimit),
		rotation.NewSelector(locations),
		cache,
		acquire.NewThrottle(cfg.Throttle.MinDelay),
		acquire.RetryPolicy{
			MaxAttempts: cfg.Throttle.MaxAttempts,
			BaseDelay:   cfg.Throttle.BackoffBase,
			Multiplier:  2,
			Logger:      logger,
		},
		cfg.Throttle.RequestTimeout,
		logger,
	)
}

func buildSearchPlan(cfg *config.Config) acquire.SearchPlan {
	names := make([]string, 0, len(cfg.Search.Locations))
	for _, l := range cfg.Search.Locations {
		names = append(names, l.Name)
	}
	return acquire.SearchPlan{
		Queries:   cfg.Search.Queries,
		Locations: names,
		Rotate:    cfg.Search.Rotate,
	}
}

func buildMatchEngine(cfg *config.Config) *match.Engine {
	return match.NewEngine(match.Options{
		MaxPerSource:       cfg.Shortlist.MaxPerSource,
		MaxTotal:           cfg.Shortlist.MaxTotal,
		BroadLimit:         cfg.Shortlist.BroadLimit,
		UltraFresh:         cfg.Freshness.UltraFresh,
		Fresh:              cfg.Freshness.Fresh,
		ReputableEmployers: cfg.Shortlist.ReputableEmployers,
	})
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
