package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobletter/jobletter/internal/api"
	"github.com/jobletter/jobletter/internal/preview"
)

var interactive bool

var shortlistCmd = &cobra.Command{
	Use:   "shortlist [subscriber-id]",
	Short: "Preview a subscriber's shortlist",
	Long:  "Build and print the shortlist for a subscriber. Without an argument an interactive subscriber picker opens.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShortlist,
}

func init() {
	shortlistCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the shortlist in a TUI")
	rootCmd.AddCommand(shortlistCmd)
}

func runShortlist(cmd *cobra.Command, args []string) error {
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

	subscriberID := ""
	if len(args) == 1 {
		subscriberID = args[0]
	} else {
		all, err := svc.ListProfiles(ctx)
		if err != nil {
			return fmt.Errorf("listing profiles: %w", err)
		}
		if len(all) == 0 {
			return fmt.Errorf("no subscriber profiles stored")
		}
		idx, err := preview.RunSubscriberPicker(all)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}
		subscriberID = all[idx].ID
	}

	shortlist, level, err := svc.Shortlist(ctx, subscriberID)
	if err != nil {
		return fmt.Errorf("building shortlist for %s: %w", subscriberID, err)
	}

	if interactive {
		return preview.RunShortlistTUI(subscriberID, level, shortlist)
	}

	fmt.Print(preview.RenderShortlist(subscriberID, level, shortlist))
	return nil
}
