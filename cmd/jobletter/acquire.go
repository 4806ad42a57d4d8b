package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobletter/jobletter/internal/dedup"
	"github.com/jobletter/jobletter/internal/model"
	"github.com/jobletter/jobletter/internal/store"
)

var (
	dryRun       bool
	onlyProvider string
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Run one acquisition cycle and exit",
	Long:  "Run a single acquisition cycle across all enabled providers, persist the results and exit.",
	RunE:  runAcquire,
}

func init() {
	acquireCmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and print results without persisting anything")
	acquireCmd.Flags().StringVar(&onlyProvider, "provider", "", "poll only the named provider")
	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var jobs model.JobStore
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		jobs = store.NewMemoryStore()
	} else {
		jobs, _, err = openStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
	}
	defer jobs.Close()

	// Dry runs use a throwaway cache so listings are never marked seen.
	var cache dedup.Cache
	if dryRun {
		cache = dedup.NewMemoryCache(cfg.Dedup.Retention)
	} else {
		cache, err = openCache(ctx, cfg)
		if err != nil {
			logger.Error("failed to open dedup cache", "error", err)
			os.Exit(1)
		}
	}

	adapters := buildAdapters(cfg, defaultHTTPClient(), logger)
	if onlyProvider != "" {
		var kept []model.ProviderAdapter
		for _, a := range adapters {
			if a.Name() == onlyProvider {
				kept = append(kept, a)
			}
		}
		if len(kept) == 0 {
			logger.Error("provider not found or not enabled", "provider", onlyProvider)
			os.Exit(1)
		}
		adapters = kept
	}
	if len(adapters) == 0 {
		logger.Error("no providers to poll")
		os.Exit(1)
	}

	engine := buildAcquireEngine(cfg, cache, logger)
	plan := buildSearchPlan(cfg)

	total := 0
	for _, adapter := range adapters {
		emitted, metrics := engine.RunCycle(ctx, adapter, plan)
		inserted := 0
		if len(emitted) > 0 {
			inserted, err = jobs.UpsertJobs(ctx, emitted)
			if err != nil {
				logger.Error("persisting results", "provider", adapter.Name(), "error", err)
			}
		}
		total += inserted
		logger.Info("provider cycle complete",
			"provider", adapter.Name(),
			"requests", metrics.Requests,
			"rate_limited", metrics.RateLimited,
			"failures", metrics.Failures,
			"duplicates", metrics.Duplicates,
			"emitted", metrics.Emitted,
			"inserted", inserted,
			"quota_exhausted", metrics.QuotaExhausted,
		)
		if dryRun {
			for _, j := range emitted {
				logger.Info("found", "title", j.Title, "company", j.Company, "location", j.Location, "url", j.URL)
			}
		}
		if metrics.QuotaExhausted {
			break
		}
	}

	logger.Info("acquisition complete", "inserted", total)
	return nil
}
