package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/session"
)

// cmdContext is the context used by CLI commands. These are direct user
// interactions with no cancellation or timeout semantics.
func cmdContext() context.Context {
	return context.Background()
}

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var firstName, lastName, email, password, role, server string
	var offline bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(firstName, lastName, email, password, role, server, offline)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Role: employer or freelancer (will prompt if not provided)")
	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the offline simulation instead of the API")

	cmd.MarkFlagRequired("first-name")
	cmd.MarkFlagRequired("last-name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runSignup(firstName, lastName, email, password, roleFlag, server string, offline bool) error {
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

	user, err := store.Signup(cmdContext(), session.SignupData{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
		Role:      role,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	return nil
}
