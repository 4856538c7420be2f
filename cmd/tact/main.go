package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/tact/cmd/tact/commands"
	"github.com/teranos/tact/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tact",
	Short: "tact - Scheduled job runner",
	Long: `tact - One-shot scheduled job runner.

tact selects due jobs from its database, executes them under timeout
control, and records run history. It is designed to be invoked from
host cron; each invocation performs one scheduling cycle and exits.

Available commands:
  run     - Execute one scheduling cycle
  add     - Add a scheduled job
  ls      - List scheduled jobs
  history - Show run history
  db      - Manage the tact database

Examples:
  tact run                 # Run all due jobs
  tact run --dry-run       # Show what would run without executing
  tact run --force scan    # Force-run jobs whose name contains "scan"
  tact ls                  # List all jobs
  tact history --stalled   # Show runs abandoned by a dead invocation`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.AddCmd)
	rootCmd.AddCommand(commands.LsCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
