package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"invoicesync/internal/config"
	"invoicesync/internal/logger"
	"invoicesync/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently synchronized invoices",
	Long: `List the most recent invoice records from the local store, newest
order date first, with their synchronization outcome.`,
	Example: `  # Show the five most recent records
  invoicesync list

  # Show the twenty most recent records
  invoicesync list --count 20`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntP("count", "n", 5, "Number of records to show")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list-cmd")

	count, _ := cmd.Flags().GetInt("count")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", cfg.StorePath).
			Msg("Failed to open invoice store")
		return fmt.Errorf("failed to open invoice store: %w", err)
	}

	invoices := st.ListRecent(count)
	if len(invoices) == 0 {
		fmt.Println("No invoices on record yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER ID\tDATE\tAMOUNT\tSTATUS\tDETAIL")
	for _, invoice := range invoices {
		detail := invoice.DriveViewLink
		if invoice.Error != "" {
			detail = invoice.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			invoice.ID,
			invoice.Date.Format("2006-01-02"),
			invoice.Amount,
			invoice.Status,
			detail,
		)
	}
	return w.Flush()
}
