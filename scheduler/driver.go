package scheduler

import (
	"context"
	"database/sql"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/teranos/tact/config"
	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/executor"
	"github.com/teranos/tact/logger"
	"github.com/teranos/tact/schedule"
)

// TriggerRun is recorded on history rows created by a scheduled cycle;
// TriggerForce marks runs started by an operator override.
const (
	TriggerRun   = "tact-run"
	TriggerForce = "tact-force"
)

// JobResult summarizes one job's run within a cycle
type JobResult struct {
	JobName  string
	Status   string
	Duration time.Duration
	Err      error // runner-side bookkeeping failure, not a job failure
}

// CycleReport is what one runner invocation accomplished
type CycleReport struct {
	StartedAt time.Time
	Selected  int
	Skipped   int // lost claim races
	Results   []JobResult
}

// Succeeded counts results whose status counts as success.
func (r *CycleReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if schedule.IsSuccessStatus(res.Status) {
			n++
		}
	}
	return n
}

// Failed counts results that did not succeed.
func (r *CycleReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Driver runs one scheduling cycle: select due jobs, claim each,
// execute it, and settle the ledger. It is built for one-shot
// invocation from host cron rather than a resident loop; overlap
// between invocations is resolved by the per-job claim.
type Driver struct {
	store  *schedule.Store
	ledger *Ledger
	exec   *executor.Executor
	cfg    config.SchedulerConfig
	log    *zap.SugaredLogger
}

// NewDriver wires a driver over the given database
func NewDriver(db *sql.DB, exec *executor.Executor, cfg config.SchedulerConfig, execCfg config.ExecutorConfig) *Driver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.StalenessHours <= 0 {
		cfg.StalenessHours = config.DefaultStalenessHours
	}
	if cfg.ClaimSlackSeconds <= 0 {
		cfg.ClaimSlackSeconds = config.DefaultClaimSlackSeconds
	}
	maxOut := execCfg.MaxOutputChars
	if maxOut <= 0 {
		maxOut = config.DefaultMaxOutputChars
	}
	maxErr := execCfg.MaxErrorChars
	if maxErr <= 0 {
		maxErr = config.DefaultMaxErrorChars
	}

	return &Driver{
		store:  schedule.NewStore(db),
		ledger: NewLedger(db, maxOut, maxErr),
		exec:   exec,
		cfg:    cfg,
		log:    logger.Named("driver"),
	}
}

// DueJobs returns what a cycle starting now would select, without
// claiming or running anything. Backs the dry-run path.
func (d *Driver) DueJobs(now time.Time) ([]*schedule.Job, error) {
	return d.store.ListDueJobs(now, d.staleness(), d.cfg.BatchSize)
}

// RunCycle executes one scheduling cycle. A store failure during
// selection aborts the cycle; per-job failures are recorded and the
// cycle moves on.
func (d *Driver) RunCycle(ctx context.Context, now time.Time) (*CycleReport, error) {
	jobs, err := d.store.ListDueJobs(now, d.staleness(), d.cfg.BatchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select due jobs")
	}

	report := &CycleReport{StartedAt: now, Selected: len(jobs)}

	if len(jobs) == 0 {
		d.log.Infow("No jobs due")
		return report, nil
	}

	d.log.Infow("Cycle starting",
		logger.FieldCount, len(jobs),
	)

	for _, job := range jobs {
		if ctx.Err() != nil {
			return report, errors.Wrap(ctx.Err(), "cycle interrupted")
		}

		result := d.runOne(ctx, job, TriggerRun)
		if result == nil {
			report.Skipped++
			continue
		}
		report.Results = append(report.Results, *result)
	}

	d.logCycleSummary(report)
	return report, nil
}

// ForceRun executes every job whose name contains the given fragment,
// ignoring schedules and active flags. History rows are marked as
// force-triggered.
func (d *Driver) ForceRun(ctx context.Context, fragment string) (*CycleReport, error) {
	jobs, err := d.store.FindJobsByName(fragment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to match jobs")
	}
	if len(jobs) == 0 {
		return nil, errors.Wrapf(errors.ErrJobNotFound, "no job name contains %q", fragment)
	}

	report := &CycleReport{StartedAt: time.Now(), Selected: len(jobs)}
	for _, job := range jobs {
		if !job.Runnable() {
			d.log.Warnw("Skipping job with nothing to execute",
				logger.FieldJob, job.Name,
			)
			report.Skipped++
			continue
		}
		result := d.runOne(ctx, job, TriggerForce)
		if result == nil {
			report.Skipped++
			continue
		}
		report.Results = append(report.Results, *result)
	}

	d.logCycleSummary(report)
	return report, nil
}

// runOne claims, executes, and settles a single job. A nil return
// means the job was skipped because another invocation holds it.
func (d *Driver) runOne(ctx context.Context, job *schedule.Job, triggeredBy string) *JobResult {
	now := time.Now()
	claimUntil := now.Add(job.Timeout(time.Duration(config.DefaultTimeoutSeconds)*time.Second) +
		time.Duration(d.cfg.ClaimSlackSeconds)*time.Second)

	if err := d.store.ClaimJob(job.ID, now, claimUntil); err != nil {
		if errors.IsJobClaimed(err) {
			d.log.Infow("Job held by another invocation, skipping",
				logger.FieldJob, job.Name,
			)
			return nil
		}
		return &JobResult{JobName: job.Name, Status: schedule.StatusError, Err: err}
	}

	runID, err := d.ledger.Begin(job, now, triggeredBy)
	if err != nil {
		d.log.Errorw("Failed to open run, releasing claim",
			logger.FieldJob, job.Name,
			logger.FieldError, err,
		)
		if relErr := d.store.ReleaseClaim(job.ID); relErr != nil {
			d.log.Errorw("Failed to release claim",
				logger.FieldJob, job.Name,
				logger.FieldError, relErr,
			)
		}
		return &JobResult{JobName: job.Name, Status: schedule.StatusError, Err: err}
	}

	outcome := d.exec.Execute(ctx, job)

	if err := d.ledger.Finalize(job, runID, outcome, time.Now()); err != nil {
		d.log.Errorw("Failed to finalize run",
			logger.FieldJob, job.Name,
			logger.FieldRunID, runID,
			logger.FieldError, err,
		)
		return &JobResult{JobName: job.Name, Status: outcome.Status, Duration: outcome.Duration, Err: err}
	}

	return &JobResult{JobName: job.Name, Status: outcome.Status, Duration: outcome.Duration}
}

func (d *Driver) staleness() time.Duration {
	return time.Duration(d.cfg.StalenessHours) * time.Hour
}

func (d *Driver) logCycleSummary(report *CycleReport) {
	fields := []interface{}{
		logger.FieldCount, report.Selected,
		logger.FieldSucceeded, report.Succeeded(),
		logger.FieldFailed, report.Failed(),
		"skipped", report.Skipped,
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, "mem_used_pct", vm.UsedPercent)
	}
	d.log.Infow("Cycle complete", fields...)
}
