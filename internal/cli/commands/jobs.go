package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazilink-dev/kazilink/internal/client"
	"github.com/kazilink-dev/kazilink/internal/guard"
	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/session"
)

// guardedSession restores the session and checks the guard for a role-scoped
// path, mirroring what the web client's route protection does: signed-out
// users are pointed at login, the wrong role at its own home.
func guardedSession(server string, required models.Role, path string) (*session.Store, error) {
	store, err := restoreSession(server, false)
	if err != nil {
		return nil, err
	}

	decision := guard.Evaluate(required, store.Snapshot(), path)
	switch decision.Action {
	case guard.Allow:
		return store, nil
	case guard.Redirect:
		if decision.To == guard.LoginPath {
			return nil, fmt.Errorf("not signed in. Run 'kazilink login' first (then retry %s)", decision.From)
		}
		return nil, fmt.Errorf("this command is for %ss; your home is %s", required, decision.To)
	default:
		return nil, fmt.Errorf("session state unknown; try again")
	}
}

// NewJobsCmd creates the jobs command group
func NewJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse or manage job listings",
	}

	cmd.AddCommand(newJobsListCmd())
	cmd.AddCommand(newJobsPostCmd())

	return cmd
}

func newJobsListCmd() *cobra.Command {
	var server, query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs (open jobs for freelancers, own listings for employers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsList(server, query)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().StringVar(&query, "query", "", "Search term (freelancers only)")

	return cmd
}

func runJobsList(server, query string) error {
	store, err := restoreSession(server, false)
	if err != nil {
		return err
	}

	user := store.CurrentUser()
	if user == nil {
		return fmt.Errorf("not signed in. Run 'kazilink login' first")
	}

	api := client.New(serverURL(server))

	var jobs []client.Job
	if user.Role == models.RoleEmployer {
		jobs, err = api.ListMyJobs(cmdContext(), store.Token())
	} else {
		jobs, err = api.BrowseJobs(cmdContext(), store.Token(), query)
	}
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}

	for _, job := range jobs {
		marker := " "
		if job.Urgent {
			marker = "!"
		}
		fmt.Printf("%s %-26s  %-12s %-10s %-18s %s %d-%d\n",
			marker, job.ID, job.Type, job.Status, job.Location, job.Currency, job.SalaryMin, job.SalaryMax)
		fmt.Printf("    %s\n", job.Title)
	}
	return nil
}

func newJobsPostCmd() *cobra.Command {
	var server string
	var req client.PostJobRequest

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new job listing (employers only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsPost(server, req)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API server URL (or set KAZILINK_SERVER)")
	cmd.Flags().StringVar(&req.Title, "title", "", "Job title")
	cmd.Flags().StringVar(&req.Type, "type", "gig", "Job type: full-time, part-time, contract, gig")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location")
	cmd.Flags().IntVar(&req.SalaryMin, "salary-min", 0, "Minimum salary (KES)")
	cmd.Flags().IntVar(&req.SalaryMax, "salary-max", 0, "Maximum salary (KES)")
	cmd.Flags().StringVar(&req.Skills, "skills", "", "Comma-separated skills")
	cmd.Flags().BoolVar(&req.Urgent, "urgent", false, "Mark as urgent")
	cmd.Flags().BoolVar(&req.Draft, "draft", false, "Save as draft instead of publishing")

	cmd.MarkFlagRequired("title")

	return cmd
}

func runJobsPost(server string, req client.PostJobRequest) error {
	store, err := guardedSession(server, models.RoleEmployer, "/employer/jobs")
	if err != nil {
		return err
	}

	api := client.New(serverURL(server))
	job, err := api.PostJob(cmdContext(), store.Token(), req)
	if err != nil {
		return fmt.Errorf("failed to post job: %w", err)
	}

	fmt.Println("✓ Job posted!")
	fmt.Printf("  ID: %s\n", job.ID)
	fmt.Printf("  Title: %s (%s)\n", job.Title, job.Status)
	return nil
}
