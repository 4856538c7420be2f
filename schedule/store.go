package schedule

import (
	"database/sql"
	"time"

	"github.com/teranos/tact/errors"
)

// Store handles persistence of scheduled jobs
type Store struct {
	db *sql.DB
}

// NewStore creates a new schedule store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const jobColumns = `job_id, job_name, execution_type, command, working_directory,
       agent_task, agent_id, schedule, trigger_type, timeout_seconds,
       is_active, priority, last_run, next_run, last_status,
       last_output, last_error, run_count, success_count, claimed_until,
       created_at, updated_at`

// CreateJob inserts a new scheduled job
func (s *Store) CreateJob(job *Job) error {
	query := `
		INSERT INTO scheduled_jobs (
			job_id, job_name, execution_type, command, working_directory,
			agent_task, agent_id, schedule, trigger_type, timeout_seconds,
			is_active, priority, next_run, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	var nextRun interface{}
	if job.NextRun != nil {
		nextRun = job.NextRun.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(query,
		job.ID,
		job.Name,
		job.ExecutionType,
		nullIfEmpty(job.Command),
		nullIfEmpty(job.WorkingDirectory),
		nullIfEmpty(job.AgentTask),
		nullIfEmpty(job.AgentID),
		job.Schedule,
		job.TriggerType,
		job.TimeoutSeconds,
		job.IsActive,
		job.Priority,
		nextRun,
		now.UTC().Format(time.RFC3339),
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create scheduled job")
	}

	return nil
}

// GetJob retrieves a scheduled job by ID
func (s *Store) GetJob(id string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM scheduled_jobs WHERE job_id = ?`

	job, err := scanJob(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WrapJobNotFound(id)
		}
		return nil, errors.Wrap(err, "failed to get scheduled job")
	}
	return job, nil
}

// FindJobsByName returns jobs whose name contains the given fragment,
// case-insensitively. Used by the force-run path, which matches by
// substring so operators can type "scan" instead of "nightly-scan".
func (s *Store) FindJobsByName(fragment string) ([]*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM scheduled_jobs
		WHERE LOWER(job_name) LIKE '%' || LOWER(?) || '%'
		ORDER BY priority ASC, job_name ASC
	`

	return s.queryJobs(query, fragment)
}

// ListJobs returns all scheduled jobs ordered by priority then name
func (s *Store) ListJobs() ([]*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM scheduled_jobs
		ORDER BY priority ASC, job_name ASC
	`

	return s.queryJobs(query)
}

// ListDueJobs returns the jobs eligible to run at the given instant.
//
// A job is due when it is active, carries a scheduled trigger type, has
// something to execute, and one of:
//
//   - next_run is at or before now,
//   - it has never run at all (no next_run, no last_run), or
//   - it has no next_run and last ran before the staleness window.
//
// Results are ordered by priority ASC (lower first) with next_run as a
// tiebreaker, never-scheduled jobs first. The batch limit caps how much
// work one cycle picks up; the remainder is left for the next cycle.
func (s *Store) ListDueJobs(now time.Time, staleness time.Duration, limit int) ([]*Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM scheduled_jobs
		WHERE is_active = 1
		  AND trigger_type IN (?, ?)
		  AND ((command IS NOT NULL AND command != '') OR (agent_task IS NOT NULL AND agent_task != ''))
		  AND (
		        next_run <= ?
		     OR (next_run IS NULL AND last_run IS NULL)
		     OR (next_run IS NULL AND last_run < ?)
		  )
		ORDER BY priority ASC, next_run ASC NULLS FIRST
		LIMIT ?
	`

	nowStr := now.UTC().Format(time.RFC3339)
	staleBefore := now.Add(-staleness).UTC().Format(time.RFC3339)

	jobs, err := s.queryJobs(query, TriggerScheduled, TriggerSchedule, nowStr, staleBefore, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due jobs")
	}
	return jobs, nil
}

// ClaimJob marks a job as held by this runner until the given deadline.
// The claim succeeds only when no unexpired claim exists, so two runner
// invocations racing on the same due job resolve to exactly one winner.
// Returns ErrJobClaimed when the job is already held.
func (s *Store) ClaimJob(id string, now, until time.Time) error {
	query := `
		UPDATE scheduled_jobs
		SET claimed_until = ?, updated_at = ?
		WHERE job_id = ?
		  AND (claimed_until IS NULL OR claimed_until <= ?)
	`

	result, err := s.db.Exec(query,
		until.UTC().Format(time.RFC3339),
		now.UTC().Format(time.RFC3339),
		id,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to claim job %s", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to check claim on job %s", id)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrJobClaimed, "job %s", id)
	}
	return nil
}

// ReleaseClaim clears a job's claim without recording a run. Used when
// a claimed job turns out to have nothing to execute.
func (s *Store) ReleaseClaim(id string) error {
	_, err := s.db.Exec(
		`UPDATE scheduled_jobs SET claimed_until = NULL, updated_at = ? WHERE job_id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to release claim on job %s", id)
	}
	return nil
}

func (s *Store) queryJobs(query string, args ...interface{}) ([]*Job, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var command, workingDir, agentTask, agentID sql.NullString
	var lastStatus, lastOutput, lastError sql.NullString
	var lastRun, nextRun, claimedUntil sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.ExecutionType,
		&command,
		&workingDir,
		&agentTask,
		&agentID,
		&job.Schedule,
		&job.TriggerType,
		&job.TimeoutSeconds,
		&job.IsActive,
		&job.Priority,
		&lastRun,
		&nextRun,
		&lastStatus,
		&lastOutput,
		&lastError,
		&job.RunCount,
		&job.SuccessCount,
		&claimedUntil,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Command = command.String
	job.WorkingDirectory = workingDir.String
	job.AgentTask = agentTask.String
	job.AgentID = agentID.String
	job.LastStatus = lastStatus.String
	job.LastOutput = lastOutput.String
	job.LastError = lastError.String

	// Timestamp parse failures indicate data corruption or a schema
	// mismatch, not a recoverable condition.
	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse created_at for job %s", job.ID)
	}
	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at for job %s", job.ID)
	}

	if job.LastRun, err = parseOptionalTime(lastRun, "last_run", job.ID); err != nil {
		return nil, err
	}
	if job.NextRun, err = parseOptionalTime(nextRun, "next_run", job.ID); err != nil {
		return nil, err
	}
	if job.ClaimedUntil, err = parseOptionalTime(claimedUntil, "claimed_until", job.ID); err != nil {
		return nil, err
	}

	return &job, nil
}

func parseOptionalTime(s sql.NullString, column, jobID string) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s for job %s", column, jobID)
	}
	return &t, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
