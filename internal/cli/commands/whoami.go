package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/guard"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")

	return cmd
}

func runWhoami(server string) error {
	store, err := restoreSession(server, false)
	if err != nil {
		return err
	}

	user := store.CurrentUser()
	if user == nil {
		fmt.Println("Not signed in. Run 'kazilink login' first.")
		return nil
	}

	fmt.Printf("Signed in as %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("Role: %s\n", user.Role)
	fmt.Printf("Home: %s\n", guard.ResolveHome(store.Snapshot()).To)
	return nil
}

// NewHomeCmd creates the home command, which resolves the generic /home
// entry point for the current session
func NewHomeCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Print where /home resolves for the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := restoreSession(server, false)
			if err != nil {
				return err
			}
			fmt.Println(guard.ResolveHome(store.Snapshot()).To)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")

	return cmd
}
