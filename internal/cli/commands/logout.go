package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/client"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var server string
	var offline bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(server, offline)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip server-side token revocation")

	return cmd
}

func runLogout(server string, offline bool) error {
	store, err := restoreSession(server, offline)
	if err != nil {
		return err
	}

	if !store.IsAuthenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	// Revoke the token server-side; the local session is cleared either way
	if !offline {
		api := client.New(serverURL(server))
		if err := api.Logout(cmdContext(), store.Token()); err != nil {
			fmt.Printf("Warning: failed to revoke token on server: %v\n", err)
		}
	}

	if err := store.Logout(cmdContext()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Println("✓ Logged out.")
	return nil
}
