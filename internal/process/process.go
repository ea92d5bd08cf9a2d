// Package process runs external commands for gitsync and captures their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// killGrace bounds how long Run waits for output pipes after a kill.
const killGrace = 2 * time.Second

// Command describes a single external invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration // zero means no timeout
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a command that started.
type Result struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timed_out"`
	// Err is a synthesized message for failures that produced no output of
	// their own, such as a timeout.
	Err string `json:"error,omitempty"`
	// Pid of the process that ran. It has been reaped by the time Run returns.
	Pid int `json:"-"`
}

// OK reports whether the command exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Message returns the most useful failure text: stderr, then stdout, then Err.
func (r Result) Message() string {
	for _, s := range []string{r.Stderr, r.Stdout, r.Err} {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// StartError is returned when the process could not be started at all.
// A command that started and exited non-zero is not a StartError.
type StartError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StartError) Unwrap() error {
	return e.Err
}

// Runner executes commands. Exec is the real implementation; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	Start(cmd Command) error
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run starts cmd, waits for it and returns its captured output.
// Stdout and stderr are drained concurrently by os/exec while the process runs.
// On timeout or cancellation the command's whole process group is killed.
func (Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, cmd.Name, cmd.Args...) //nolint:gosec // args come from fixed git subcommands
	proc.Dir = cmd.Dir
	proc.WaitDelay = killGrace
	isolate(proc)

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	if err := proc.Start(); err != nil {
		return Result{ExitCode: -1}, &StartError{Command: cmd.String(), Err: err}
	}

	pid := proc.Process.Pid
	waitErr := proc.Wait()

	if ctxErr := runCtx.Err(); ctxErr != nil {
		res := Result{ExitCode: -1, TimedOut: true, Pid: pid}
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			res.Err = fmt.Sprintf("command timed out after %s: %s", cmd.Timeout, cmd.String())
		} else {
			res.Err = fmt.Sprintf("command cancelled: %s: %v", cmd.String(), ctxErr)
		}
		return res, nil
	}

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Pid:    pid,
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Result{ExitCode: -1}, fmt.Errorf("waiting for %s: %w", cmd.String(), waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// Start launches cmd without waiting for it to finish.
func (Exec) Start(cmd Command) error {
	proc := exec.Command(cmd.Name, cmd.Args...) //nolint:gosec,noctx // detached GUI launch outlives the caller
	proc.Dir = cmd.Dir
	detach(proc)
	if err := proc.Start(); err != nil {
		return &StartError{Command: cmd.String(), Err: err}
	}
	// The child is not waited on; release it so it is not reaped by us.
	return proc.Process.Release()
}
