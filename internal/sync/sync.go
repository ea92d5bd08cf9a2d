// Package sync runs the stash, pull --rebase and stash pop sequence against
// one repository and reports what happened.
//
// A run moves through Stashing, ResolvingUpstream, Pulling and PoppingStash.
// It stops at the first failing stage. A failed pull or pop restores the
// stashed changes with a single stash apply and never retries. When the
// failure looks like a conflict, a GUI client is opened at most once per run.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zaixsen/unityGitTool/internal/client"
	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/conflict"
	"github.com/zaixsen/unityGitTool/internal/git"
	"github.com/zaixsen/unityGitTool/internal/output"
	"github.com/zaixsen/unityGitTool/internal/process"
)

// Kind classifies a failed run.
type Kind string

const (
	KindNone         Kind = ""
	KindStartFailure Kind = "start_failure"
	KindNonZeroExit  Kind = "nonzero_exit"
	KindTimeout      Kind = "timeout"
	KindConflict     Kind = "conflict"
)

// Progress stages and the fraction of the run they mark.
const (
	StageStash    = "stash local changes"
	StageUpstream = "resolve upstream"
	StagePull     = "pull --rebase"
	StageRestore  = "restore local changes"
	StagePop      = "stash pop"
	StageReapply  = "re-apply stash after failed pop"
	StageDone     = "done"
)

var stageFraction = map[string]float64{
	StageStash:    0.15,
	StageUpstream: 0.35,
	StagePull:     0.6,
	StageRestore:  0.7,
	StagePop:      0.85,
	StageReapply:  0.9,
	StageDone:     1.0,
}

// Reporter receives progress as the run moves between stages.
// output.Printer implements it.
type Reporter interface {
	Progress(stage string, fraction float64)
}

// Launcher opens a GUI client for manual conflict resolution.
// client.Launcher implements it.
type Launcher interface {
	Open(ctx context.Context, repo string) (client.Client, error)
}

// Outcome is the result of one run. Success carries the summary; failure
// carries a composed Message with the failing command, its error text and
// any remediation guidance.
type Outcome struct {
	RunID          string        `json:"run_id"`
	Repo           string        `json:"repo"`
	Success        bool          `json:"success"`
	Message        string        `json:"message,omitempty"`
	Kind           Kind          `json:"kind,omitempty"`
	Command        string        `json:"command,omitempty"`
	Guidance       string        `json:"guidance,omitempty"`
	Upstream       *git.Upstream `json:"upstream,omitempty"`
	Stashed        bool          `json:"stashed"`
	ClientLaunched string        `json:"client_launched,omitempty"`
	Summary        Summary       `json:"summary"`
}

// Headline is a one-line description of a failed run, such as
// "git stash pop failed (conflict)". Message holds the full report.
func (o Outcome) Headline() string {
	if o.Success {
		return o.Message
	}
	return fmt.Sprintf("%s failed (%s)", o.Command, o.Kind)
}

// Err converts a failed outcome into an output.ExitError whose code matches
// the failure kind and whose message is the Headline. It returns nil for a
// successful run.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	switch o.Kind {
	case KindConflict:
		return output.NewConflictError(o.Headline())
	case KindTimeout:
		return output.NewTimeoutError(o.Headline())
	default:
		return output.NewSystemError(o.Headline())
	}
}

// Workflow holds everything a run needs. The zero value is not usable;
// build one with New.
type Workflow struct {
	Runner     process.Runner
	Config     config.Config
	Classifier *conflict.Classifier
	// Launcher is nil when GUI clients must never be opened.
	Launcher Launcher
	Reporter Reporter
	Logger   *slog.Logger
}

// New returns a Workflow with a GUI launcher configured from cfg. Both git
// and the launcher run through runner; nil means process.Exec.
func New(cfg config.Config, runner process.Runner) *Workflow {
	if runner == nil {
		runner = process.Exec{}
	}
	w := &Workflow{
		Runner:     runner,
		Config:     cfg,
		Classifier: conflict.New(cfg.ConflictKeywords),
	}
	if cfg.OpenClientEnabled() {
		w.Launcher = &client.Launcher{
			Locator: &client.Locator{Extra: map[client.Tool][]string{
				client.TortoiseGit: cfg.Clients.TortoiseGit,
				client.SourceTree:  cfg.Clients.SourceTree,
			}},
			Runner:    runner,
			GitBinary: cfg.GitBinary,
		}
	}
	return w
}

// runState is created fresh for every run and passed to each step. It
// carries the single-shot client launch guard.
type runState struct {
	id             string
	repo           string
	steps          []Step
	stashed        bool
	clientLaunched bool
	launchedTool   string
}

func (s *runState) note(format string, args ...any) {
	s.steps = append(s.steps, Step{Note: fmt.Sprintf(format, args...)})
}

// Run performs stash, pull --rebase and stash pop in repo.
// It never returns an error; failures are described by the Outcome.
//
// When the stash reports nothing to save (Config.NoChangesMarkers), no
// entry of this run exists, so both stash pop and the stash apply after a
// failed pull are skipped. Older stash entries are never touched.
func (w *Workflow) Run(ctx context.Context, repo string) Outcome {
	st := &runState{id: uuid.NewString(), repo: repo}
	log := w.logger().With("run_id", st.id, "repo", repo)
	g := git.New(&recorder{runner: w.runner(), state: st, log: log}, repo,
		git.WithBinary(w.Config.GitBinary),
		git.WithTimeout(w.Config.CommandTimeoutValue()),
	)

	log.Debug("sync started")

	w.progress(StageStash)
	marker := w.Config.Marker
	if marker == "" {
		marker = config.DefaultMarker
	}
	res, err := g.Stash(ctx, marker, w.Config.StashTimeoutValue())
	if failed(res, err) {
		return w.fail(ctx, st, g, nil, stashCommand(marker), res, err, false)
	}
	st.stashed = !w.nothingStashed(res)
	if !st.stashed {
		st.note("no local changes to stash; stash pop will be skipped")
	}

	w.progress(StageUpstream)
	up := g.ResolveUpstream(ctx, w.Config.FallbackBranch)
	pullCmd := "git " + strings.Join(up.PullArgs(), " ")
	if up.Tracking {
		st.note("using tracking upstream %s: %s", up, pullCmd)
	} else {
		st.note("using %s: %s", up, pullCmd)
	}
	log.Debug("upstream resolved", "upstream", up.String(), "tracking", up.Tracking)

	w.progress(StagePull)
	res, err = g.Pull(ctx, up)
	if failed(res, err) {
		return w.fail(ctx, st, g, &up, pullCmd, res, err, true)
	}

	if st.stashed {
		w.progress(StagePop)
		res, err = g.StashPop(ctx)
		if failed(res, err) {
			return w.fail(ctx, st, g, &up, "git stash pop", res, err, true)
		}
	}

	w.progress(StageDone)
	log.Info("sync complete", "upstream", up.String())
	return Outcome{
		RunID:    st.id,
		Repo:     repo,
		Success:  true,
		Message:  "Sync complete: rebased onto " + up.String(),
		Upstream: &up,
		Stashed:  st.stashed,
		Summary:  Summary{Steps: st.steps},
	}
}

// fail ends the run after command failed. When rollback is set and changes
// were stashed, a single stash apply restores them. Conflict-like output
// opens a GUI client through the single-shot guard.
func (w *Workflow) fail(ctx context.Context, st *runState, g *git.Client, up *git.Upstream, command string,
	res process.Result, runErr error, rollback bool,
) Outcome {
	log := w.logger().With("run_id", st.id, "repo", st.repo)

	text := failureText(res, runErr)
	guidance := ""
	if runErr == nil && !res.TimedOut {
		guidance = w.classifier().Classify(command, classifyInput(res))
	}

	// Pull conflicts open the client before the restore, pop conflicts after it.
	isPop := conflict.KindOf(command) == conflict.KindStashPop
	if guidance != "" && !isPop {
		w.launchClient(ctx, st, log)
	}
	if rollback && st.stashed {
		if isPop {
			w.progress(StageReapply)
		} else {
			w.progress(StageRestore)
		}
		w.restore(ctx, st, g, log)
	}
	if guidance != "" && isPop {
		w.launchClient(ctx, st, log)
	}

	kind := failureKind(res, runErr, guidance)
	log.Info("sync failed", "command", command, "kind", string(kind), "error", text)

	var msg strings.Builder
	fmt.Fprintf(&msg, "command: %s\nerror: %s", command, text)
	if isPop && st.stashed {
		msg.WriteString("\n\nstash pop failed; stash apply was attempted and the stash entry was kept")
	}
	if guidance != "" {
		fmt.Fprintf(&msg, "\n\nsuggested resolution:\n%s", guidance)
	}

	return Outcome{
		RunID:          st.id,
		Repo:           st.repo,
		Message:        msg.String(),
		Kind:           kind,
		Command:        command,
		Guidance:       guidance,
		Upstream:       up,
		Stashed:        st.stashed,
		ClientLaunched: st.launchedTool,
		Summary:        Summary{Steps: st.steps},
	}
}

// restore runs stash apply once. Its failure is recorded and logged but
// never replaces the original error.
func (w *Workflow) restore(ctx context.Context, st *runState, g *git.Client, log *slog.Logger) {
	res, err := g.StashApply(ctx)
	if failed(res, err) {
		st.note("stash apply failed; local changes remain in git stash list")
		log.Warn("stash apply failed", "error", failureText(res, err))
	}
}

// launchClient opens a GUI client unless one was already opened this run.
func (w *Workflow) launchClient(ctx context.Context, st *runState, log *slog.Logger) {
	if st.clientLaunched || w.Launcher == nil || !w.Config.OpenClientEnabled() {
		return
	}
	st.clientLaunched = true

	opened, err := w.Launcher.Open(ctx, st.repo)
	if err != nil {
		st.note("could not open a git client: %v", err)
		log.Warn("client launch failed", "error", err)
		return
	}
	st.launchedTool = string(opened.Tool)
	st.note("opened %s for conflict resolution", opened.Tool)
	log.Info("client launched", "tool", string(opened.Tool), "path", opened.Path)
}

// nothingStashed reports whether stash output says there was nothing to save.
func (w *Workflow) nothingStashed(res process.Result) bool {
	markers := w.Config.NoChangesMarkers
	if len(markers) == 0 {
		markers = config.DefaultNoChangesMarkers
	}
	text := strings.ToLower(res.Stdout + "\n" + res.Stderr)
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func (w *Workflow) progress(stage string) {
	if w.Reporter != nil {
		w.Reporter.Progress(stage, stageFraction[stage])
	}
}

func (w *Workflow) runner() process.Runner {
	if w.Runner == nil {
		return process.Exec{}
	}
	return w.Runner
}

func (w *Workflow) classifier() *conflict.Classifier {
	if w.Classifier == nil {
		return conflict.New(w.Config.ConflictKeywords)
	}
	return w.Classifier
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w.Logger
}

func stashCommand(marker string) string {
	return "git stash -u -m " + strconv.Quote(marker)
}

// failed reports whether a git invocation did not succeed. Any non-zero
// exit counts, even with empty stderr.
func failed(res process.Result, err error) bool {
	return err != nil || !res.OK()
}

// failureText is the error shown to the user: the run error, then stderr,
// stdout and the synthesized message, then the bare exit status.
func failureText(res process.Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if msg := res.Message(); msg != "" {
		return msg
	}
	return "exit status " + strconv.Itoa(res.ExitCode)
}

// classifyInput is the combined output, stderr first. git rebase reports
// "CONFLICT" lines on stdout and "could not apply" on stderr.
func classifyInput(res process.Result) string {
	return res.Stderr + "\n" + res.Stdout
}

func failureKind(res process.Result, err error, guidance string) Kind {
	var startErr *process.StartError
	switch {
	case errors.As(err, &startErr):
		return KindStartFailure
	case res.TimedOut:
		return KindTimeout
	case guidance != "":
		return KindConflict
	default:
		return KindNonZeroExit
	}
}

// recorder wraps a process.Runner and appends every git invocation to the
// run summary.
type recorder struct {
	runner process.Runner
	state  *runState
	log    *slog.Logger
}

func (r *recorder) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	start := time.Now()
	res, err := r.runner.Run(ctx, cmd)
	elapsed := time.Since(start)

	step := Step{
		Command:  "git " + strings.Join(cmd.Args, " "),
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Error:    res.Err,
		Duration: elapsed,
	}
	if err != nil {
		step.Error = err.Error()
	}
	r.state.steps = append(r.state.steps, step)

	r.log.Debug("git",
		"args", strings.Join(cmd.Args, " "),
		"exit_code", res.ExitCode,
		"timed_out", res.TimedOut,
		"duration", elapsed,
	)
	return res, err
}

func (r *recorder) Start(cmd process.Command) error {
	return r.runner.Start(cmd)
}
