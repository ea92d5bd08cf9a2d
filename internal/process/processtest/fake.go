// Package processtest provides a scripted process.Runner for tests.
package processtest

import (
	"context"
	"strings"
	"sync"

	"github.com/zaixsen/unityGitTool/internal/process"
)

// Response is the scripted outcome for one command line.
type Response struct {
	Result process.Result
	Err    error
}

// Fake is a process.Runner that answers from a script keyed by the
// argument list joined with spaces (the binary name is not part of the key).
// Unscripted commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []process.Command
	started   []process.Command
	StartErr  error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{responses: make(map[string][]Response)}
}

// On queues a response for args. Multiple responses for the same args are
// returned in order; the last one repeats.
func (f *Fake) On(args string, res process.Result) *Fake {
	return f.OnResponse(args, Response{Result: res})
}

// OnError queues a start error for args.
func (f *Fake) OnError(args string, err error) *Fake {
	return f.OnResponse(args, Response{Result: process.Result{ExitCode: -1}, Err: err})
}

// OnResponse queues a full response for args.
func (f *Fake) OnResponse(args string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[args] = append(f.responses[args], resp)
	return f
}

// Run implements process.Runner.
func (f *Fake) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	key := strings.Join(cmd.Args, " ")
	queue := f.responses[key]
	if len(queue) == 0 {
		return process.Result{}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return resp.Result, resp.Err
}

// Start implements process.Runner by recording the launch.
func (f *Fake) Start(cmd process.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, cmd)
	return f.StartErr
}

// Calls returns the argument strings of every Run, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, strings.Join(c.Args, " "))
	}
	return out
}

// Commands returns every command passed to Run.
func (f *Fake) Commands() []process.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]process.Command(nil), f.calls...)
}

// Started returns every command passed to Start.
func (f *Fake) Started() []process.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]process.Command(nil), f.started...)
}

// Count returns how many times args was run.
func (f *Fake) Count(args string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == args {
			n++
		}
	}
	return n
}

// Fail is a convenience Result for a non-zero exit with stderr.
func Fail(code int, stderr string) process.Result {
	return process.Result{ExitCode: code, Stderr: stderr}
}

// OK is a convenience Result for a zero exit with stdout.
func OK(stdout string) process.Result {
	return process.Result{Stdout: stdout}
}
