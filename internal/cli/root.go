package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "kazilink",
	Short: "KaziLink - job marketplace for employers and freelancers",
	Long: `KaziLink CLI - Find gigs or post jobs from your terminal.

Sessions persist locally, so you stay signed in between commands
until you log out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kazilink version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewHomeCmd())
	rootCmd.AddCommand(commands.NewJobsCmd())
	rootCmd.AddCommand(commands.NewApplyCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
