package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/logger"
	"github.com/teranos/tact/schedule"
)

// AgentInvoker hands a task description to an agent runner and returns
// its output. Implementations must honor ctx cancellation.
type AgentInvoker interface {
	Invoke(ctx context.Context, req AgentRequest) (output string, err error)
}

// AgentRequest describes one agent invocation
type AgentRequest struct {
	Task    string
	AgentID string
	Workdir string
}

// cliAgentInvoker shells out to the configured agent binary with the
// task on the command line. The binary is expected to print its result
// to stdout and exit 0 on success.
type cliAgentInvoker struct {
	binary string
}

func (c *cliAgentInvoker) Invoke(ctx context.Context, req AgentRequest) (string, error) {
	args := []string{"--print", req.Task}
	if req.AgentID != "" {
		args = append([]string{"--agent", req.AgentID}, args...)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return stdout.String(), errors.Wrap(err, strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// runAgent delegates the job's task to the agent runner and maps the
// result back onto the shared status vocabulary.
func (e *Executor) runAgent(ctx context.Context, job *schedule.Job) Outcome {
	output, err := e.agent.Invoke(ctx, AgentRequest{
		Task:    job.AgentTask,
		AgentID: job.AgentID,
		Workdir: job.WorkingDirectory,
	})

	outcome := Outcome{Output: output}
	if err != nil {
		if exitErr, ok := asExitError(err); ok {
			outcome.Status = classifyExit(exitErr.ExitCode(), job.Name)
			outcome.ErrorMsg = err.Error()
			return outcome
		}
		e.log.Warnw("Agent invocation failed",
			logger.FieldJob, job.Name,
			logger.FieldError, err,
		)
		outcome.Status = schedule.StatusError
		outcome.ErrorMsg = err.Error()
		return outcome
	}

	outcome.Status = schedule.StatusSuccess
	return outcome
}

func asExitError(err error) (*exec.ExitError, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}
