package schedule

import "time"

// RunRecord is one row of job run history. A record is inserted with
// status running when execution begins and completed in place when it
// finishes; a row stuck in running with an old started_at is the
// footprint of a runner that died mid-execution.
type RunRecord struct {
	ID          int64
	JobID       string
	JobName     string // joined from scheduled_jobs for display
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	Output      string
	ErrorMsg    string
	DurationMS  *int64
	TriggeredBy string
}

// Final reports whether the record has reached a terminal status.
func (r *RunRecord) Final() bool {
	return r.Status != StatusRunning
}
