package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/db"
	"github.com/teranos/gong-mcp/jobs"
	"github.com/teranos/gong-mcp/logger"
)

// JobsCmd groups analysis job management commands
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage background analysis jobs",
	Long: `Inspect background analysis jobs created by the analyze_calls tool.

Job management commands:
  gong-mcp jobs ls              # List recent jobs
  gong-mcp jobs show <id>       # Show job details
  gong-mcp jobs results <id>    # Print results of a completed job`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// JobsLsCmd lists analysis jobs
var JobsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List analysis jobs",
	Long: `List analysis jobs, newest first, optionally filtered by status.

Status filters:
  pending  - Jobs created but not yet started
  running  - Jobs currently processing batches
  complete - Successfully completed jobs
  error    - Jobs that failed

Examples:
  gong-mcp jobs ls                    # List recent jobs
  gong-mcp jobs ls --status running   # List only running jobs
  gong-mcp jobs ls --limit 50         # Show up to 50 jobs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statusFilter, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		return runJobsLs(statusFilter, limit)
	},
}

// JobsShowCmd shows details of one job
var JobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show status of an analysis job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobsShow(args[0])
	},
}

// JobsResultsCmd prints the results payload of a completed job
var JobsResultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Print results of a completed analysis job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobsResults(args[0])
	},
}

func init() {
	JobsLsCmd.Flags().String("status", "", "Filter by status (pending, running, complete, error)")
	JobsLsCmd.Flags().Int("limit", 20, "Maximum number of jobs to display")

	JobsCmd.AddCommand(JobsLsCmd)
	JobsCmd.AddCommand(JobsShowCmd)
	JobsCmd.AddCommand(JobsResultsCmd)
}

// openStore loads config and opens the jobs store for CLI commands
func openStore() (*jobs.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Open(cfg.Jobs.DBPath, logger.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return jobs.NewStore(database, cfg.Jobs.ResultsDir), func() { database.Close() }, nil
}

func runJobsLs(statusFilter string, limit int) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	var status *jobs.Status
	if statusFilter != "" {
		if !jobs.IsValidStatus(statusFilter) {
			return fmt.Errorf("invalid status %q: must be pending, running, complete, or error", statusFilter)
		}
		s := jobs.Status(statusFilter)
		status = &s
	}

	list, err := store.List(status, limit)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-40s %-10s %-15s %-10s %s\n", "JOB ID", "STATUS", "PROGRESS", "COST", "CREATED")
	fmt.Printf("%-40s %-10s %-15s %-10s %s\n", "------", "------", "--------", "----", "-------")

	for _, job := range list {
		progress := fmt.Sprintf("%d/%d (%.0f%%)",
			job.Progress.Completed, job.Progress.Total, job.Progress.Percentage())

		fmt.Printf("%-40s %-10s %-15s $%-9.3f %s\n",
			job.ID,
			job.Status,
			progress,
			job.CostSoFar,
			job.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Printf("\nTotal: %d job(s)\n", len(list))
	return nil
}

func runJobsShow(jobID string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	job, err := store.Get(jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	fmt.Printf("Job ID: %s\n", job.ID)
	fmt.Printf("  Status: %s\n", job.Status)
	fmt.Printf("  Message: %s\n", job.Message)
	fmt.Printf("\n")

	fmt.Printf("Progress: %d/%d batches (%.1f%%)\n",
		job.Progress.Completed, job.Progress.Total, job.Progress.Percentage())
	fmt.Printf("Cost so far: $%.3f\n", job.CostSoFar)
	fmt.Printf("\n")

	fmt.Printf("Request:\n")
	fmt.Printf("  Prompt: %s\n", job.Request.Prompt)
	if job.Request.FromDate != "" {
		fmt.Printf("  Date range: %s to %s\n", job.Request.FromDate, job.Request.ToDate)
	}
	fmt.Printf("  Calls: %d (%d tokens, %d batches planned)\n",
		job.Request.CallCount, job.Request.TotalTokens, job.Request.EstimatedBatches)
	fmt.Printf("\n")

	if job.Status == jobs.StatusError {
		fmt.Printf("Error (%s): %s\n\n", job.ErrorKind, job.ErrorMessage)
	}
	if job.ResultsRef != "" {
		fmt.Printf("Results: %s\n\n", job.ResultsRef)
	}

	fmt.Printf("Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", job.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runJobsResults(jobID string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	results, err := store.LoadResults(jobID)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	fmt.Println(string(output))
	return nil
}
