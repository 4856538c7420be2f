package schedule

import (
	"database/sql"
	"time"

	"github.com/teranos/tact/errors"
)

// RunStore handles persistence of job run history
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new run history store
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// StartRun inserts a history row in the running state and returns its
// ID. This happens before execution so that a crashed runner leaves a
// visible trace rather than a silent gap.
func (s *RunStore) StartRun(jobID string, startedAt time.Time, triggeredBy string) (int64, error) {
	query := `
		INSERT INTO job_run_history (job_id, started_at, status, triggered_by)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		jobID,
		startedAt.UTC().Format(time.RFC3339),
		StatusRunning,
		triggeredBy,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to start run for job %s", jobID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get run ID")
	}
	return id, nil
}

// FinalizeRun completes a history row with the terminal status and
// captured output. Runs inside the caller's transaction so the history
// row and the job's cached state move together.
func (s *RunStore) FinalizeRun(tx *sql.Tx, runID int64, status string, completedAt time.Time, output, errorMsg string, durationMS int64) error {
	query := `
		UPDATE job_run_history
		SET completed_at = ?, status = ?, output = ?, error_message = ?, duration_ms = ?
		WHERE id = ?
	`

	result, err := tx.Exec(query,
		completedAt.UTC().Format(time.RFC3339),
		status,
		nullIfEmpty(output),
		nullIfEmpty(errorMsg),
		durationMS,
		runID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to finalize run %d", runID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to check finalize of run %d", runID)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrRunNotFound, "run %d", runID)
	}
	return nil
}

// GetRun retrieves a single run record by ID
func (s *RunStore) GetRun(id int64) (*RunRecord, error) {
	query := `
		SELECT h.id, h.job_id, j.job_name, h.started_at, h.completed_at,
		       h.status, h.output, h.error_message, h.duration_ms, h.triggered_by
		FROM job_run_history h
		JOIN scheduled_jobs j ON j.job_id = h.job_id
		WHERE h.id = ?
	`

	rec, err := scanRun(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrRunNotFound, "run %d", id)
		}
		return nil, errors.Wrap(err, "failed to get run")
	}
	return rec, nil
}

// ListRuns returns recent run history, newest first. An empty jobID
// returns history across all jobs.
func (s *RunStore) ListRuns(jobID string, limit int) ([]*RunRecord, error) {
	query := `
		SELECT h.id, h.job_id, j.job_name, h.started_at, h.completed_at,
		       h.status, h.output, h.error_message, h.duration_ms, h.triggered_by
		FROM job_run_history h
		JOIN scheduled_jobs j ON j.job_id = h.job_id
	`
	var args []interface{}
	if jobID != "" {
		query += ` WHERE h.job_id = ?`
		args = append(args, jobID)
	}
	query += ` ORDER BY h.started_at DESC LIMIT ?`
	args = append(args, limit)

	return s.queryRuns(query, args...)
}

// ListRunsByJobName returns recent history for jobs whose name contains
// the given fragment, case-insensitively, newest first.
func (s *RunStore) ListRunsByJobName(fragment string, limit int) ([]*RunRecord, error) {
	query := `
		SELECT h.id, h.job_id, j.job_name, h.started_at, h.completed_at,
		       h.status, h.output, h.error_message, h.duration_ms, h.triggered_by
		FROM job_run_history h
		JOIN scheduled_jobs j ON j.job_id = h.job_id
		WHERE LOWER(j.job_name) LIKE '%' || LOWER(?) || '%'
		ORDER BY h.started_at DESC
		LIMIT ?
	`

	return s.queryRuns(query, fragment, limit)
}

// ListStalledRuns returns rows still marked running whose start time
// predates the cutoff. These belong to runner invocations that died
// before finalizing.
func (s *RunStore) ListStalledRuns(cutoff time.Time) ([]*RunRecord, error) {
	query := `
		SELECT h.id, h.job_id, j.job_name, h.started_at, h.completed_at,
		       h.status, h.output, h.error_message, h.duration_ms, h.triggered_by
		FROM job_run_history h
		JOIN scheduled_jobs j ON j.job_id = h.job_id
		WHERE h.status = ? AND h.started_at < ?
		ORDER BY h.started_at ASC
	`

	return s.queryRuns(query, StatusRunning, cutoff.UTC().Format(time.RFC3339))
}

func (s *RunStore) queryRuns(query string, args ...interface{}) ([]*RunRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query run history")
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var startedAt string
	var completedAt, output, errorMsg sql.NullString
	var durationMS sql.NullInt64

	err := row.Scan(
		&rec.ID,
		&rec.JobID,
		&rec.JobName,
		&startedAt,
		&completedAt,
		&rec.Status,
		&output,
		&errorMsg,
		&durationMS,
		&rec.TriggeredBy,
	)
	if err != nil {
		return nil, err
	}

	rec.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse started_at for run %d", rec.ID)
	}

	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse completed_at for run %d", rec.ID)
		}
		rec.CompletedAt = &t
	}
	rec.Output = output.String
	rec.ErrorMsg = errorMsg.String
	if durationMS.Valid {
		rec.DurationMS = &durationMS.Int64
	}

	return &rec, nil
}
