package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"invoicesync/internal/auth"
	"invoicesync/internal/drive"
	"invoicesync/internal/logger"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List Google Drive folders available to the account",
	Long: `List the folders the configured Google account can see, so one can be
picked as the synchronization target via DRIVE_FOLDER_ID or --folder.`,
	Args: cobra.NoArgs,
	RunE: runFolders,
}

func init() {
	rootCmd.AddCommand(foldersCmd)
}

func runFolders(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("folders-cmd")

	ctx, cancel := createSignalContext(log)
	defer cancel()

	provider, err := auth.NewServiceAccount()
	if err != nil {
		return fmt.Errorf("failed to load Google credentials: %w", err)
	}

	remote, err := drive.NewService(ctx, provider.Client(ctx))
	if err != nil {
		return fmt.Errorf("failed to create Drive client: %w", err)
	}

	folders, err := remote.ListFolders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list Drive folders")
		return fmt.Errorf("failed to list Drive folders: %w", err)
	}

	if len(folders) == 0 {
		fmt.Println("No folders visible to this account.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FOLDER ID\tNAME")
	for _, folder := range folders {
		fmt.Fprintf(w, "%s\t%s\n", folder.ID, folder.Name)
	}
	return w.Flush()
}
