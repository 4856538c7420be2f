package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tact/schedule"
)

// LsCmd represents the ls command
var LsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List scheduled jobs",
	Long: `List scheduled jobs with their schedules, priorities, and last
known status.

Examples:
  tact ls            # All jobs
  tact ls --active   # Only active jobs`,
	RunE: runLs,
}

var activeOnlyFlag bool

func init() {
	LsCmd.Flags().BoolVar(&activeOnlyFlag, "active", false, "Show only active jobs")
}

func runLs(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	jobs, err := store.ListJobs()
	if err != nil {
		return err
	}

	if activeOnlyFlag {
		filtered := jobs[:0]
		for _, job := range jobs {
			if job.IsActive {
				filtered = append(filtered, job)
			}
		}
		jobs = filtered
	}

	if len(jobs) == 0 {
		pterm.Info.Println("No scheduled jobs")
		return nil
	}

	data := pterm.TableData{{"NAME", "TYPE", "SCHEDULE", "PRIORITY", "ACTIVE", "NEXT RUN", "LAST STATUS", "RUNS"}}
	for _, job := range jobs {
		active := "yes"
		if !job.IsActive {
			active = "no"
		}
		data = append(data, []string{
			job.Name,
			job.ExecutionType,
			job.Schedule,
			fmt.Sprintf("%d", job.Priority),
			active,
			formatOptionalTime(job.NextRun),
			orDash(job.LastStatus),
			fmt.Sprintf("%d/%d", job.SuccessCount, job.RunCount),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
