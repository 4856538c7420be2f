package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tact/schedule"
)

// HistoryCmd represents the history command
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show run history",
	Long: `Show recent job runs, newest first.

A run still marked running long after it started belongs to an
invocation that died before finalizing; --stalled surfaces those.

Examples:
  tact history                 # Recent runs across all jobs
  tact history scan            # Runs for jobs whose name contains "scan"
  tact history --job <id>      # Runs for one job by ID
  tact history --limit 50      # More history
  tact history --stalled       # Abandoned running rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyJobFlag   string
	historyLimitFlag int
	stalledFlag      bool
	stalledAgeFlag   time.Duration
)

func init() {
	HistoryCmd.Flags().StringVar(&historyJobFlag, "job", "", "Show history for this job ID only")
	HistoryCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Number of runs to show")
	HistoryCmd.Flags().BoolVar(&stalledFlag, "stalled", false, "Show runs abandoned by a dead invocation")
	HistoryCmd.Flags().DurationVar(&stalledAgeFlag, "stalled-age", time.Hour, "Minimum age for a running row to count as stalled")
}

func runHistory(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	runs := schedule.NewRunStore(database)

	if stalledFlag {
		return printStalled(runs)
	}

	var records []*schedule.RunRecord
	if len(args) == 1 {
		records, err = runs.ListRunsByJobName(args[0], historyLimitFlag)
	} else {
		records, err = runs.ListRuns(historyJobFlag, historyLimitFlag)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		pterm.Info.Println("No run history")
		return nil
	}

	data := pterm.TableData{{"JOB", "STATUS", "STARTED", "DURATION", "TRIGGER"}}
	for _, rec := range records {
		data = append(data, []string{
			rec.JobName,
			rec.Status,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(rec.DurationMS),
			rec.TriggeredBy,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printStalled(runs *schedule.RunStore) error {
	records, err := runs.ListStalledRuns(time.Now().Add(-stalledAgeFlag))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		pterm.Success.Println("No stalled runs")
		return nil
	}

	pterm.Warning.Printfln("%d run(s) stuck in running state", len(records))
	data := pterm.TableData{{"RUN", "JOB", "STARTED", "AGE"}}
	for _, rec := range records {
		data = append(data, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.JobName,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			time.Since(rec.StartedAt).Round(time.Minute).String(),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return (time.Duration(*ms) * time.Millisecond).String()
}
