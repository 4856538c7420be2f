package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tact/errors"
	"github.com/teranos/tact/schedule"
)

func subprocessJob(name, command string) *schedule.Job {
	return &schedule.Job{
		ID:            "job-" + name,
		Name:          name,
		ExecutionType: schedule.ExecutionSubprocess,
		Command:       command,
	}
}

func TestExecuteSuccess(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("greet", "echo hello world"))

	assert.Equal(t, schedule.StatusSuccess, outcome.Status)
	assert.Equal(t, "hello world\n", outcome.Output)
	assert.Empty(t, outcome.ErrorMsg)
	assert.True(t, outcome.Succeeded())
	assert.Greater(t, outcome.Duration, time.Duration(0))
}

func TestExecuteQuotedArguments(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("quoted", `echo "one two" three`))

	assert.Equal(t, schedule.StatusSuccess, outcome.Status)
	assert.Equal(t, "one two three\n", outcome.Output)
}

func TestExecuteFailure(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("flaky", `sh -c "echo oops >&2; exit 2"`))

	assert.Equal(t, schedule.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMsg, "oops")
	assert.False(t, outcome.Succeeded())
}

func TestExecuteReviewExitOneIsIssuesFound(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("code-review", `sh -c "exit 1"`))
	assert.Equal(t, schedule.StatusIssuesFound, outcome.Status)
	assert.True(t, outcome.Succeeded())

	outcome = e.Execute(context.Background(), subprocessJob("link-monitor", `sh -c "exit 1"`))
	assert.Equal(t, schedule.StatusIssuesFound, outcome.Status)

	// Exit 1 from an ordinary job is a plain failure
	outcome = e.Execute(context.Background(), subprocessJob("backup", `sh -c "exit 1"`))
	assert.Equal(t, schedule.StatusFailed, outcome.Status)

	// Other exit codes fail even for review jobs
	outcome = e.Execute(context.Background(), subprocessJob("code-review", `sh -c "exit 3"`))
	assert.Equal(t, schedule.StatusFailed, outcome.Status)
}

func TestExecuteTimeout(t *testing.T) {
	e := New("tact-agent", WithDefaultTimeout(100*time.Millisecond))

	outcome := e.Execute(context.Background(), subprocessJob("slow", "sleep 5"))

	assert.Equal(t, schedule.StatusTimeout, outcome.Status)
	assert.Contains(t, outcome.ErrorMsg, "timeout")
	assert.False(t, outcome.Succeeded())
}

func TestExecuteMissingBinary(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("ghost", "no-such-binary-tact-test"))

	assert.Equal(t, schedule.StatusError, outcome.Status)
	assert.NotEmpty(t, outcome.ErrorMsg)
}

func TestExecuteUnparsableCommand(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("bad", `echo "unterminated`))

	assert.Equal(t, schedule.StatusError, outcome.Status)
	assert.Contains(t, outcome.ErrorMsg, "unparsable command")
}

func TestExecuteEmptyCommand(t *testing.T) {
	e := New("tact-agent")

	outcome := e.Execute(context.Background(), subprocessJob("blank", "   "))

	assert.Equal(t, schedule.StatusError, outcome.Status)
}

type stubAgent struct {
	output string
	err    error
}

func (s *stubAgent) Invoke(ctx context.Context, req AgentRequest) (string, error) {
	return s.output, s.err
}

func agentJob(name, task string) *schedule.Job {
	return &schedule.Job{
		ID:            "job-" + name,
		Name:          name,
		ExecutionType: schedule.ExecutionAgent,
		AgentTask:     task,
	}
}

func TestExecuteAgentSuccess(t *testing.T) {
	e := New("tact-agent", WithAgentInvoker(&stubAgent{output: "summary ready"}))

	outcome := e.Execute(context.Background(), agentJob("summarize", "summarize inbox"))

	assert.Equal(t, schedule.StatusSuccess, outcome.Status)
	assert.Equal(t, "summary ready", outcome.Output)
}

func TestExecuteAgentFailure(t *testing.T) {
	e := New("tact-agent", WithAgentInvoker(&stubAgent{err: errors.New("agent unavailable")}))

	outcome := e.Execute(context.Background(), agentJob("summarize", "summarize inbox"))

	assert.Equal(t, schedule.StatusError, outcome.Status)
	assert.Contains(t, outcome.ErrorMsg, "agent unavailable")
}

func TestClassifyExit(t *testing.T) {
	require.Equal(t, schedule.StatusSuccess, classifyExit(0, "anything"))
	require.Equal(t, schedule.StatusIssuesFound, classifyExit(1, "weekly-Review"))
	require.Equal(t, schedule.StatusFailed, classifyExit(1, "backup"))
	require.Equal(t, schedule.StatusFailed, classifyExit(2, "weekly-review"))
}
