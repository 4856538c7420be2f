package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/schedule"
)

// AddCmd represents the add command
var AddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a scheduled job",
	Long: `Add a scheduled job to the database.

Subprocess jobs need --command; agent jobs need --task. The schedule
descriptor accepts "daily", "weekly", "hourly", or "every N
minutes|hours|days".

Examples:
  tact add nightly-scan --command "scan --all" --schedule daily
  tact add inbox-summary --task "summarize inbox" --schedule "every 4 hours"
  tact add weekly-review --command "review.sh" --schedule weekly --priority 10`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addCommandFlag  string
	addTaskFlag     string
	addAgentFlag    string
	addWorkdirFlag  string
	addScheduleFlag string
	addPriorityFlag int
	addTimeoutFlag  int
	addInactiveFlag bool
)

func init() {
	AddCmd.Flags().StringVar(&addCommandFlag, "command", "", "Shell command to execute")
	AddCmd.Flags().StringVar(&addTaskFlag, "task", "", "Task description for agent execution")
	AddCmd.Flags().StringVar(&addAgentFlag, "agent", "", "Agent ID for agent execution")
	AddCmd.Flags().StringVar(&addWorkdirFlag, "workdir", "", "Working directory for subprocess execution")
	AddCmd.Flags().StringVar(&addScheduleFlag, "schedule", "daily", "Schedule descriptor")
	AddCmd.Flags().IntVar(&addPriorityFlag, "priority", 100, "Priority (lower runs first)")
	AddCmd.Flags().IntVar(&addTimeoutFlag, "timeout", 300, "Timeout in seconds")
	AddCmd.Flags().BoolVar(&addInactiveFlag, "inactive", false, "Create the job disabled")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if addCommandFlag == "" && addTaskFlag == "" {
		return errors.New("one of --command or --task is required")
	}
	if addCommandFlag != "" && addTaskFlag != "" {
		return errors.New("--command and --task are mutually exclusive")
	}

	// Reject descriptors we will never be able to schedule
	if _, err := schedule.ParseInterval(addScheduleFlag); err != nil {
		return errors.Wrapf(err, "schedule %q is not recognized", addScheduleFlag)
	}

	job := &schedule.Job{
		ID:               uuid.New().String(),
		Name:             name,
		ExecutionType:    schedule.ExecutionSubprocess,
		Command:          addCommandFlag,
		WorkingDirectory: addWorkdirFlag,
		Schedule:         addScheduleFlag,
		TriggerType:      schedule.TriggerScheduled,
		TimeoutSeconds:   addTimeoutFlag,
		IsActive:         !addInactiveFlag,
		Priority:         addPriorityFlag,
	}
	if addTaskFlag != "" {
		job.ExecutionType = schedule.ExecutionAgent
		job.AgentTask = addTaskFlag
		job.AgentID = addAgentFlag
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	if err := schedule.NewStore(database).CreateJob(job); err != nil {
		return err
	}

	pterm.Success.Printfln("Added job %s (%s)", name, job.ID)
	fmt.Printf("Schedule: %s, priority %d, timeout %ds\n", job.Schedule, job.Priority, job.TimeoutSeconds)
	return nil
}
