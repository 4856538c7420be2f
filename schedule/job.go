package schedule

import (
	"time"
)

// Execution types determine which strategy runs a job.
const (
	ExecutionSubprocess = "subprocess" // shell command under the configured timeout
	ExecutionAgent      = "agent"      // task delegated to an agent runner
)

// Trigger types. Only the scheduled variants are eligible for automatic
// due-selection; both spellings appear in the wild and both are honored.
const (
	TriggerScheduled = "scheduled"
	TriggerSchedule  = "schedule"
	TriggerManual    = "manual"
)

// Run statuses recorded on jobs and history rows.
const (
	StatusRunning     = "running"
	StatusSuccess     = "success"
	StatusIssuesFound = "issues_found" // exit 1 from a review or monitor job
	StatusFailed      = "failed"
	StatusTimeout     = "timeout"
	StatusError       = "error" // the runner itself failed, not the job
)

// IsSuccessStatus reports whether a final status counts toward the
// job's success tally. A review job that found issues still did its
// work, so issues_found counts as success.
func IsSuccessStatus(status string) bool {
	return status == StatusSuccess || status == StatusIssuesFound
}

// Job is a recurring unit of work owned by the scheduler.
type Job struct {
	ID               string
	Name             string
	ExecutionType    string
	Command          string // subprocess jobs
	WorkingDirectory string
	AgentTask        string // agent jobs
	AgentID          string

	Schedule       string
	TriggerType    string
	TimeoutSeconds int
	IsActive       bool
	Priority       int // lower runs first

	LastRun    *time.Time
	NextRun    *time.Time
	LastStatus string
	LastOutput string
	LastError  string

	RunCount     int
	SuccessCount int

	// ClaimedUntil marks the job as held by a live runner invocation.
	// A job whose claim has not yet expired is skipped by other runners.
	ClaimedUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Runnable reports whether the job has anything to execute. Jobs with
// neither a command nor an agent task are definition stubs and are
// never selected.
func (j *Job) Runnable() bool {
	if j.ExecutionType == ExecutionAgent {
		return j.AgentTask != ""
	}
	return j.Command != ""
}

// Timeout returns the job's timeout, falling back to the given default
// when the row carries none.
func (j *Job) Timeout(fallback time.Duration) time.Duration {
	if j.TimeoutSeconds > 0 {
		return time.Duration(j.TimeoutSeconds) * time.Second
	}
	return fallback
}
