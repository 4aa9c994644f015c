package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"invoicesync/internal/auth"
	"invoicesync/internal/config"
	"invoicesync/internal/logger"
	"invoicesync/internal/sheets"
	"invoicesync/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the invoice records to a Google Sheet",
	Long: `Append every record from the local invoice store to a worksheet of
the configured Google Sheet, creating the worksheet with headers when
it does not exist yet.

Required environment variables:
  GOOGLE_SHEET_URL - URL of the target spreadsheet
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - credentials`,
	Example: `  # Export to the default worksheet
  invoicesync export

  # Export to a specific worksheet
  invoicesync export --worksheet "2024 Review"`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export-cmd")

	worksheet, _ := cmd.Flags().GetString("worksheet")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is not set")
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", cfg.StorePath).
			Msg("Failed to open invoice store")
		return fmt.Errorf("failed to open invoice store: %w", err)
	}

	invoices := st.List()
	if len(invoices) == 0 {
		fmt.Println("No invoices on record yet, nothing to export.")
		return nil
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	provider, err := auth.NewServiceAccount()
	if err != nil {
		return fmt.Errorf("failed to load Google credentials: %w", err)
	}

	exporter, err := sheets.NewService(ctx, provider.Client(ctx), cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to create sheets exporter: %w", err)
	}

	if err := exporter.AppendInvoices(ctx, invoices, worksheet); err != nil {
		log.Error().Err(err).Msg("Sheet export failed")
		return fmt.Errorf("failed to export invoices: %w", err)
	}

	fmt.Printf("Exported %d invoice records to worksheet %q.\n", len(invoices), worksheet)
	return nil
}
