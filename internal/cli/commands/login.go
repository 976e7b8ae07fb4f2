package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, role, server string
	var offline bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and start a local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, role, server, offline)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set KAZILINK_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set KAZILINK_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Role: employer or freelancer (will prompt if not provided)")
	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the offline simulation instead of the API")

	return cmd
}

func runLogin(email, password, roleFlag, server string, offline bool) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("KAZILINK_EMAIL")
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or KAZILINK_EMAIL env var)")
	}

	role, err := resolveRole(roleFlag)
	if err != nil {
		return err
	}

	password, err = resolvePassword(password)
	if err != nil {
		return err
	}

	store, err := restoreSession(server, offline)
	if err != nil {
		return err
	}

	user, err := store.Login(cmdContext(), email, password, role)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	return nil
}
