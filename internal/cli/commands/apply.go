package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/client"
	"github.com/kazilink-dev/kazilink/internal/models"
)

// NewApplyCmd creates the apply command
func NewApplyCmd() *cobra.Command {
	var server, coverLetter string
	var expectedRate int

	cmd := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job (freelancers only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(server, args[0], coverLetter, expectedRate)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().StringVar(&coverLetter, "cover-letter", "", "Cover letter text")
	cmd.Flags().IntVar(&expectedRate, "rate", 0, "Expected hourly rate (KES)")

	cmd.MarkFlagRequired("cover-letter")

	return cmd
}

func runApply(server, jobID, coverLetter string, expectedRate int) error {
	store, err := guardedSession(server, models.RoleFreelancer, "/freelancer/apply/"+jobID)
	if err != nil {
		return err
	}

	api := client.New(serverURL(server))
	err = api.Apply(cmdContext(), store.Token(), jobID, client.ApplyRequest{
		CoverLetter:  coverLetter,
		ExpectedRate: expectedRate,
	})
	if err != nil {
		return fmt.Errorf("failed to apply: %w", err)
	}

	fmt.Println("✓ Application submitted!")
	return nil
}
