// Package executor runs scheduled jobs under timeout control and
// classifies their outcomes. Execution never returns a Go error to the
// caller; every way a job can go wrong maps to a terminal status on the
// Outcome so the run ledger always has something coherent to record.
package executor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tact/logger"
	"github.com/teranos/tact/schedule"
)

// Outcome is the classified result of one job execution.
type Outcome struct {
	Status   string
	Output   string
	ErrorMsg string
	Duration time.Duration
}

// Succeeded reports whether the outcome counts toward the job's
// success tally.
func (o Outcome) Succeeded() bool {
	return schedule.IsSuccessStatus(o.Status)
}

// Executor dispatches jobs to the strategy matching their execution
// type.
type Executor struct {
	log            *zap.SugaredLogger
	agent          AgentInvoker
	defaultTimeout time.Duration
}

// Option configures an Executor
type Option func(*Executor)

// WithAgentInvoker overrides the agent strategy, mainly for tests
func WithAgentInvoker(a AgentInvoker) Option {
	return func(e *Executor) {
		e.agent = a
	}
}

// WithDefaultTimeout sets the timeout applied to jobs without one
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.defaultTimeout = d
	}
}

// New creates an executor. The agent binary handles agent-delegated
// jobs; subprocess jobs run directly.
func New(agentBinary string, opts ...Option) *Executor {
	e := &Executor{
		log:            logger.Named("executor"),
		agent:          &cliAgentInvoker{binary: agentBinary},
		defaultTimeout: 300 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the job and classifies the result. The job's timeout
// bounds wall-clock execution; on expiry the child process is killed
// and the outcome is marked timeout.
func (e *Executor) Execute(ctx context.Context, job *schedule.Job) Outcome {
	timeout := job.Timeout(e.defaultTimeout)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	e.log.Infow("Executing job",
		logger.FieldJob, job.Name,
		logger.FieldJobID, job.ID,
		"execution_type", job.ExecutionType,
		"timeout", timeout.String(),
	)

	var outcome Outcome
	switch job.ExecutionType {
	case schedule.ExecutionAgent:
		outcome = e.runAgent(runCtx, job)
	default:
		outcome = e.runSubprocess(runCtx, job)
	}
	outcome.Duration = time.Since(start)

	// A deadline that fired is authoritative over whatever exit state
	// the killed process reported.
	if runCtx.Err() == context.DeadlineExceeded {
		outcome.Status = schedule.StatusTimeout
		if outcome.ErrorMsg == "" {
			outcome.ErrorMsg = "execution exceeded timeout of " + timeout.String()
		}
	}

	e.log.Infow("Job execution finished",
		logger.FieldJob, job.Name,
		logger.FieldStatus, outcome.Status,
		logger.FieldDurationMS, outcome.Duration.Milliseconds(),
	)

	return outcome
}

// classifyExit maps a process exit code to a terminal status. Exit 1
// from a review or monitoring job means the job worked and found
// something, which is a different condition from the job breaking.
func classifyExit(exitCode int, jobName string) string {
	switch {
	case exitCode == 0:
		return schedule.StatusSuccess
	case exitCode == 1 && isReviewJob(jobName):
		return schedule.StatusIssuesFound
	default:
		return schedule.StatusFailed
	}
}

func isReviewJob(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "review") || strings.Contains(lower, "monitor")
}
