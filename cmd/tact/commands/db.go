package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/tact/config"
	"github.com/teranos/tact/errors"
)

// DbCmd represents the db command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the tact database",
	Long: `Manage tact database operations.

Examples:
  tact db migrate   # Apply pending schema migrations
  tact db stats     # Show job and history counts`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		// openDatabase already migrates; reaching here means success
		fmt.Println("Database schema is up to date")
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	var totalJobs, activeJobs int
	err = database.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(is_active), 0)
		FROM scheduled_jobs
	`).Scan(&totalJobs, &activeJobs)
	if err != nil {
		return errors.Wrap(err, "failed to query job stats")
	}

	var totalRuns, runningRuns int
	err = database.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(status = 'running'), 0)
		FROM job_run_history
	`).Scan(&totalRuns, &runningRuns)
	if err != nil {
		return errors.Wrap(err, "failed to query run stats")
	}

	fmt.Println("Database Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Database Path:  %s\n", cfg.Database.Path)
	fmt.Printf("Jobs:           %d (%d active)\n", totalJobs, activeJobs)
	fmt.Printf("Recorded Runs:  %d\n", totalRuns)
	if runningRuns > 0 {
		fmt.Printf("In Flight:      %d\n", runningRuns)
	}
	return nil
}
