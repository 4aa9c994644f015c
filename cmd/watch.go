package cmd

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"invoicesync/internal/config"
	"invoicesync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run synchronization passes on a schedule",
	Long: `Keep the extractor ingress running and execute one synchronization
pass immediately, then another on every tick of the configured
interval, until interrupted.

At most one pass is in flight at a time: a tick that arrives while a
pass is still running is skipped.`,
	Example: `  # Sync every 24 hours (the default interval)
  invoicesync watch

  # Sync every 6 hours
  SYNC_INTERVAL=6h invoicesync watch`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("domain", "", "Retail site domain (default: RETAIL_DOMAIN)")
	watchCmd.Flags().String("folder", "", "Google Drive folder ID (default: DRIVE_FOLDER_ID)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch-cmd")

	domain, _ := cmd.Flags().GetString("domain")
	folderID, _ := cmd.Flags().GetString("folder")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if domain == "" {
		domain = cfg.RetailDomain
	}
	if folderID == "" {
		folderID = cfg.DriveFolderID
	}
	if !cfg.AutoSync {
		return fmt.Errorf("automatic synchronization is disabled (AUTO_SYNC=false)")
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	stack, err := buildSyncStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stack.shutdown(log)

	log.Info().
		Str("domain", domain).
		Dur("interval", cfg.SyncInterval).
		Msg("Starting scheduled synchronization")

	var inFlight atomic.Bool
	runPass := func() {
		if !inFlight.CompareAndSwap(false, true) {
			log.Warn().Msg("Previous pass still running, skipping this tick")
			return
		}
		defer inFlight.Store(false)

		year := time.Now().Year()
		result := stack.service.Synchronize(ctx, domain, folderID, year)
		if !result.Success {
			log.Error().
				Str("error", result.Error).
				Msg("Scheduled pass failed")
		}
	}

	runPass()

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go runPass()
		case <-ctx.Done():
			log.Info().Msg("Stopping scheduled synchronization")
			return nil
		}
	}
}
