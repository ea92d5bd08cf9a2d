// Package git provides Git operations via exec for gitsync.
package git

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/zaixsen/unityGitTool/internal/output"
	"github.com/zaixsen/unityGitTool/internal/process"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// Client runs git subcommands in one repository through a process.Runner.
type Client struct {
	runner  process.Runner
	dir     string
	binary  string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the git executable.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout sets the default timeout for commands that have none of their own.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates a Client for the repository at dir.
// If runner is nil, commands run with process.Exec.
func New(runner process.Runner, dir string, opts ...Option) *Client {
	if runner == nil {
		runner = process.Exec{}
	}
	c := &Client{runner: runner, dir: dir, binary: DefaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the repository directory commands run in.
func (c *Client) Dir() string {
	return c.dir
}

// Command builds the process.Command for a git invocation. A zero timeout
// means none.
func (c *Client) Command(timeout time.Duration, args ...string) process.Command {
	return process.Command{Name: c.binary, Args: args, Dir: c.dir, Timeout: timeout}
}

// Run executes git with args and the client's default timeout.
// A non-zero exit is reported in the Result, not as an error; the error is
// set only when git could not be started.
func (c *Client) Run(ctx context.Context, args ...string) (process.Result, error) {
	return c.RunTimeout(ctx, c.timeout, args...)
}

// RunTimeout executes git with an explicit timeout in place of the client
// default. Zero means no timeout.
func (c *Client) RunTimeout(ctx context.Context, timeout time.Duration, args ...string) (process.Result, error) {
	res, err := c.runner.Run(ctx, c.Command(timeout, args...))
	if err != nil {
		var startErr *process.StartError
		if errors.As(err, &startErr) {
			return res, output.NewSystemErrorWithCause("git not found: ensure git is installed and in PATH", err)
		}
		return res, output.NewSystemErrorWithCause("git command failed: "+strings.Join(args, " "), err)
	}
	return res, nil
}

// Output runs git and returns trimmed stdout. Non-zero exits become errors
// carrying stderr, in the same shape as start failures.
func (c *Client) Output(ctx context.Context, args ...string) (string, error) {
	res, err := c.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !res.OK() {
		msg := res.Message()
		if msg == "" {
			msg = "exit status " + strconv.Itoa(res.ExitCode)
		}
		return "", output.NewSystemError("git command failed: " + msg)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Stash shelves all local changes, untracked files included, under marker.
func (c *Client) Stash(ctx context.Context, marker string, timeout time.Duration) (process.Result, error) {
	return c.RunTimeout(ctx, timeout, "stash", "-u", "-m", marker)
}

// StashApply re-applies the newest stash entry without dropping it.
func (c *Client) StashApply(ctx context.Context) (process.Result, error) {
	return c.Run(ctx, "stash", "apply")
}

// StashPop re-applies and drops the newest stash entry.
func (c *Client) StashPop(ctx context.Context) (process.Result, error) {
	return c.Run(ctx, "stash", "pop")
}

// Pull runs pull --rebase against up.
func (c *Client) Pull(ctx context.Context, up Upstream) (process.Result, error) {
	return c.Run(ctx, up.PullArgs()...)
}

// IsRepo reports whether the client directory is inside a work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	_, err := c.Output(ctx, "rev-parse", "--git-dir")
	return err == nil
}
