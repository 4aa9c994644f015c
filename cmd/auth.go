package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"invoicesync/internal/auth"
	"invoicesync/internal/logger"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check or revoke the Google credentials",
	Long: `Verify that the configured Google credentials can reach the storage
account, or revoke the current access token with the identity provider.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Probe the credentials
  invoicesync auth --check

  # Revoke the current access token
  invoicesync auth --revoke`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().Bool("check", false, "Verify the credentials against the storage account")
	authCmd.Flags().Bool("revoke", false, "Revoke the current access token")
}

func runAuth(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("auth-cmd")

	check, _ := cmd.Flags().GetBool("check")
	revoke, _ := cmd.Flags().GetBool("revoke")

	if check == revoke {
		return fmt.Errorf("specify exactly one of --check or --revoke")
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	provider, err := auth.NewServiceAccount()
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			return fmt.Errorf("missing Google credentials. Please set one of:\n"+
				"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n"+
				"  GOOGLE_CREDENTIALS='<json-credentials>'\n"+
				"Original error: %w", err)
		}
		return fmt.Errorf("failed to load Google credentials: %w", err)
	}

	if revoke {
		if err := provider.Revoke(ctx); err != nil {
			log.Error().Err(err).Msg("Token revocation failed")
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		fmt.Println("Access token revoked.")
		return nil
	}

	valid, err := provider.Valid(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Credential check failed")
		return fmt.Errorf("failed to check credentials: %w", err)
	}
	if !valid {
		return fmt.Errorf("credentials are not valid for the storage account")
	}

	fmt.Println("Credentials are valid.")
	return nil
}
