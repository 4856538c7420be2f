package scheduler

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/executor"
	"github.com/teranos/tact/internal/util"
	"github.com/teranos/tact/logger"
	"github.com/teranos/tact/schedule"
)

// Ledger owns the two-phase write protocol around each job run. Begin
// records a running history row before anything executes; Finalize
// commits the terminal status, the job's cached result fields, and the
// recomputed next run in a single transaction. Whatever happens to the
// process in between, the history either shows a completed run or a
// running row whose age betrays the crash.
type Ledger struct {
	db     *sql.DB
	runs   *schedule.RunStore
	log    *zap.SugaredLogger
	maxOut int
	maxErr int
}

// NewLedger creates a run ledger over the given database
func NewLedger(db *sql.DB, maxOutputChars, maxErrorChars int) *Ledger {
	return &Ledger{
		db:     db,
		runs:   schedule.NewRunStore(db),
		log:    logger.Named("ledger"),
		maxOut: maxOutputChars,
		maxErr: maxErrorChars,
	}
}

// Begin opens a run: a history row in the running state.
func (l *Ledger) Begin(job *schedule.Job, startedAt time.Time, triggeredBy string) (int64, error) {
	runID, err := l.runs.StartRun(job.ID, startedAt, triggeredBy)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open run for job %s", job.Name)
	}

	l.log.Debugw("Run opened",
		logger.FieldJob, job.Name,
		logger.FieldRunID, runID,
	)
	return runID, nil
}

// Finalize closes a run. In one transaction it completes the history
// row, updates the job's cached last-run fields and counters, computes
// the next run from the completion time, and releases the claim.
// Output and error text are truncated to the configured bounds before
// they touch the store.
func (l *Ledger) Finalize(job *schedule.Job, runID int64, outcome executor.Outcome, completedAt time.Time) error {
	output := util.Truncate(outcome.Output, l.maxOut)
	errorMsg := util.Truncate(outcome.ErrorMsg, l.maxErr)

	nextRun := schedule.NextRun(job.Schedule, completedAt, time.Now())

	tx, err := l.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin finalize transaction")
	}
	defer tx.Rollback()

	if err := l.runs.FinalizeRun(tx, runID, outcome.Status, completedAt, output, errorMsg, outcome.Duration.Milliseconds()); err != nil {
		return err
	}

	successIncrement := 0
	if outcome.Succeeded() {
		successIncrement = 1
	}

	var nextRunValue interface{}
	if nextRun != nil {
		nextRunValue = nextRun.UTC().Format(time.RFC3339)
	}

	result, err := tx.Exec(`
		UPDATE scheduled_jobs
		SET last_run = ?,
		    next_run = ?,
		    last_status = ?,
		    last_output = ?,
		    last_error = ?,
		    run_count = run_count + 1,
		    success_count = success_count + ?,
		    claimed_until = NULL,
		    updated_at = ?
		WHERE job_id = ?
	`,
		completedAt.UTC().Format(time.RFC3339),
		nextRunValue,
		outcome.Status,
		output,
		errorMsg,
		successIncrement,
		time.Now().UTC().Format(time.RFC3339),
		job.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update job %s after run", job.Name)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check job update")
	}
	if affected == 0 {
		return errors.WrapJobNotFound(job.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit finalize transaction")
	}

	fields := []interface{}{
		logger.FieldJob, job.Name,
		logger.FieldRunID, runID,
		logger.FieldStatus, outcome.Status,
		logger.FieldDurationMS, outcome.Duration.Milliseconds(),
	}
	if nextRun != nil {
		fields = append(fields, logger.FieldNextRun, nextRun.UTC().Format(time.RFC3339))
	}
	l.log.Infow("Run finalized", fields...)

	return nil
}
