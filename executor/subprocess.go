package executor

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/tact/logger"
	"github.com/teranos/tact/schedule"
)

// runSubprocess executes the job's command line as a child process.
// The command is split with shell quoting rules rather than handed to a
// shell, so job definitions cannot smuggle in pipelines or redirects.
func (e *Executor) runSubprocess(ctx context.Context, job *schedule.Job) Outcome {
	words, err := shellquote.Split(job.Command)
	if err != nil {
		return Outcome{
			Status:   schedule.StatusError,
			ErrorMsg: "unparsable command: " + err.Error(),
		}
	}
	if len(words) == 0 {
		return Outcome{
			Status:   schedule.StatusError,
			ErrorMsg: "empty command",
		}
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	if job.WorkingDirectory != "" {
		cmd.Dir = job.WorkingDirectory
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	outcome := Outcome{
		Output:   stdout.String(),
		ErrorMsg: stderr.String(),
	}

	if err == nil {
		outcome.Status = schedule.StatusSuccess
		return outcome
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		outcome.Status = classifyExit(exitErr.ExitCode(), job.Name)
		return outcome
	}

	// The process never ran: command not found, bad working directory,
	// permission problem. That is a runner-side error, not a job
	// failure.
	e.log.Warnw("Failed to spawn job process",
		logger.FieldJob, job.Name,
		logger.FieldError, err,
	)
	outcome.Status = schedule.StatusError
	outcome.ErrorMsg = err.Error()
	return outcome
}
