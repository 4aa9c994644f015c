package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicesync/internal/acquire"
	"invoicesync/internal/auth"
	"invoicesync/internal/config"
	"invoicesync/internal/drive"
	"invoicesync/internal/logger"
	"invoicesync/internal/notify"
	"invoicesync/internal/pageext"
	"invoicesync/internal/store"
	"invoicesync/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one invoice synchronization pass",
	Long: `Run a single synchronization pass: request the order list from the
companion page extractor, download the invoice document of every order
not yet on record, upload it to the target Google Drive folder, and
record the per-order outcome in the local invoice store.

Orders already on record are never retried, whatever their previous
outcome. A failure on one order is recorded and the pass continues.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Synchronize the current year for the configured domain
  invoicesync sync

  # Synchronize a specific year into a specific Drive folder
  invoicesync sync --year 2024 --folder 1AbCdEfGh

  # Allow the extractor more time to answer
  invoicesync sync --timeout 300`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("domain", "", "Retail site domain (default: RETAIL_DOMAIN)")
	syncCmd.Flags().String("folder", "", "Google Drive folder ID (default: DRIVE_FOLDER_ID)")
	syncCmd.Flags().Int("year", time.Now().Year(), "Order history year to synchronize")
	syncCmd.Flags().Int("timeout", 0, "Extraction timeout in seconds (default: ACQUIRE_TIMEOUT)")
	syncCmd.Flags().String("listen", "", "Extractor ingress address (default: EXTRACTOR_LISTEN_ADDR)")
}

// syncStack bundles everything one synchronization pass needs, so the sync
// and watch commands assemble it the same way.
type syncStack struct {
	store   *store.Store
	bridge  *pageext.Bridge
	ingress *http.Server
	service *sync.Service
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sync-cmd")

	domain, _ := cmd.Flags().GetString("domain")
	folderID, _ := cmd.Flags().GetString("folder")
	year, _ := cmd.Flags().GetInt("year")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	listenAddr, _ := cmd.Flags().GetString("listen")

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
	if timeoutSecs > 0 {
		cfg.AcquireTimeout = time.Duration(timeoutSecs) * time.Second
	}
	if listenAddr != "" {
		cfg.ExtractorListenAddr = listenAddr
	}

	log.Info().
		Str("domain", domain).
		Str("folder_id", folderID).
		Int("year", year).
		Msg("Starting invoice synchronization")

	ctx, cancel := createSignalContext(log)
	defer cancel()

	stack, err := buildSyncStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stack.shutdown(log)

	result := stack.service.Synchronize(ctx, domain, folderID, year)

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	fmt.Println(string(jsonData))

	if !result.Success {
		return fmt.Errorf("synchronization failed: %s", result.Error)
	}
	return nil
}

// buildSyncStack wires store, credentials, Drive client, extractor ingress and
// orchestrator, and starts serving the ingress in the background.
func buildSyncStack(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*syncStack, error) {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", cfg.StorePath).
			Msg("Failed to open invoice store")
		return nil, fmt.Errorf("failed to open invoice store: %w", err)
	}

	provider, err := auth.NewServiceAccount()
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			return nil, fmt.Errorf("missing Google credentials. Please set one of:\n"+
				"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n"+
				"  GOOGLE_CREDENTIALS='<json-credentials>'\n"+
				"Original error: %w", err)
		}
		return nil, fmt.Errorf("failed to load Google credentials: %w", err)
	}

	remote, err := drive.NewService(ctx, provider.Client(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	bridge := pageext.NewBridge()
	ingress := &http.Server{
		Addr:    cfg.ExtractorListenAddr,
		Handler: bridge,
	}
	go func() {
		log.Info().
			Str("addr", cfg.ExtractorListenAddr).
			Msg("Extractor ingress listening")
		if err := ingress.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Extractor ingress failed")
		}
	}()

	acquirer := acquire.New(bridge, cfg.AcquireTimeout)
	notifier := notify.NewLogNotifier()
	service := sync.New(st, acquirer, remote, drive.NewHTTPFetcher(), notifier, cfg.DriveFolderName)

	return &syncStack{
		store:   st,
		bridge:  bridge,
		ingress: ingress,
		service: service,
	}, nil
}

func (s *syncStack) shutdown(log zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ingress.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Extractor ingress shutdown failed")
	}
}

// createSignalContext creates a context canceled by SIGINT/SIGTERM.
func createSignalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
