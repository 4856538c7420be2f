package logger

// Standard field names for consistent structured logging across tact.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldJob   = "job"
	FieldJobID = "job_id"
	FieldRunID = "run_id"

	// Scheduling
	FieldSchedule = "schedule"
	FieldNextRun  = "next_run"
	FieldPriority = "priority"

	// Outcome
	FieldStatus = "status"
	FieldError  = "error"

	// Timing
	FieldDurationMS = "duration_ms"

	// Counts
	FieldCount     = "count"
	FieldSucceeded = "succeeded"
	FieldFailed    = "failed"
)
