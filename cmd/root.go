package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicesync/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicesync",
	Short: "Invoice Sync - synchronize retail order invoices to Google Drive",
	Long: `Invoice Sync collects the invoices of a retail order history and uploads
them to a Google Drive folder, keeping a local record of every order it
has already handled so repeated runs never duplicate work.

Order pages are scraped by a companion extractor that talks to this tool
over a local HTTP ingress; everything else (document download, Drive
upload, bookkeeping, optional Sheets export) happens here.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Invoice Sync executed")

		fmt.Println("Welcome to Invoice Sync!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
