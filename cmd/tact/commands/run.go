package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tact/config"
	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/executor"
	"github.com/teranos/tact/scheduler"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one scheduling cycle",
	Long: `Execute one scheduling cycle: select due jobs, run each under its
timeout, and record the results.

Exits non-zero when any executed job failed, so cron mail and wrapper
scripts can react to failures.

Examples:
  tact run                   # Run all due jobs
  tact run --dry-run         # Show what would run without executing
  tact run --force review    # Run jobs whose name contains "review"
  tact run --batch 2         # Cap this cycle at 2 jobs`,
	RunE: runRun,
}

var (
	dryRunFlag bool
	forceFlag  string
	batchFlag  int
)

func init() {
	RunCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show due jobs without executing them")
	RunCmd.Flags().StringVar(&forceFlag, "force", "", "Run jobs whose name contains this fragment, regardless of schedule")
	RunCmd.Flags().IntVar(&batchFlag, "batch", 0, "Override the batch size for this cycle")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if batchFlag > 0 {
		cfg.Scheduler.BatchSize = batchFlag
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	exec := executor.New(cfg.Executor.AgentBinary,
		executor.WithDefaultTimeout(time.Duration(cfg.Executor.DefaultTimeoutSeconds)*time.Second))
	driver := scheduler.NewDriver(database, exec, cfg.Scheduler, cfg.Executor)

	if dryRunFlag {
		return printDryRun(driver)
	}

	// A terminating signal lets the current job finish its bookkeeping
	// rather than leaving a stuck running row.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var report *scheduler.CycleReport
	if forceFlag != "" {
		report, err = driver.ForceRun(ctx, forceFlag)
	} else {
		report, err = driver.RunCycle(ctx, time.Now())
	}
	if err != nil {
		return err
	}

	printCycleReport(report)

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d job(s) did not succeed", failed)
	}
	return nil
}

func printDryRun(driver *scheduler.Driver) error {
	jobs, err := driver.DueJobs(time.Now())
	if err != nil {
		return err
	}

	pterm.Warning.Println("DRY RUN: no jobs will be executed")
	pterm.Println()

	if len(jobs) == 0 {
		pterm.Info.Println("No jobs due")
		return nil
	}

	data := pterm.TableData{{"NAME", "PRIORITY", "SCHEDULE", "NEXT RUN", "LAST STATUS"}}
	for _, job := range jobs {
		data = append(data, []string{
			job.Name,
			fmt.Sprintf("%d", job.Priority),
			job.Schedule,
			formatOptionalTime(job.NextRun),
			orDash(job.LastStatus),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printCycleReport(report *scheduler.CycleReport) {
	if len(report.Results) == 0 && report.Skipped == 0 {
		pterm.Info.Println("No jobs due")
		return
	}

	data := pterm.TableData{{"NAME", "STATUS", "DURATION"}}
	for _, res := range report.Results {
		data = append(data, []string{
			res.JobName,
			res.Status,
			res.Duration.Round(time.Millisecond).String(),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return
	}

	summary := fmt.Sprintf("%d succeeded, %d failed", report.Succeeded(), report.Failed())
	if report.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped (held by another invocation)", report.Skipped)
	}
	if report.Failed() > 0 {
		pterm.Error.Println(summary)
	} else {
		pterm.Success.Println(summary)
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
