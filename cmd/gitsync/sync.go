package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/conflict"
	"github.com/zaixsen/unityGitTool/internal/git"
	"github.com/zaixsen/unityGitTool/internal/lock"
	"github.com/zaixsen/unityGitTool/internal/output"
	gitsync "github.com/zaixsen/unityGitTool/internal/sync"
)

// syncFlags holds the per-run overrides of the sync command.
type syncFlags struct {
	noClient       bool
	fallbackBranch string
	marker         string
	stashTimeout   time.Duration
	timeout        time.Duration
}

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	var flags syncFlags
	cmd := &cobra.Command{
		Use:     "sync [path]",
		Aliases: []string{"update"},
		Short:   "Stash local changes, pull --rebase, then restore them",
		Long: `Update the repository containing path (default: current directory).

Steps:
  1. git stash -u -m "<marker>"      shelve modified and untracked files
  2. resolve the upstream            tracking branch, or remote/branch fallback
  3. git pull --rebase [remote branch]
  4. git stash pop                   restore the shelved work

A failed pull or pop runs git stash apply once so local changes are not left
only in the stash list. Nothing is retried. Conflicts print guidance and open
a GUI client unless --no-client is given.

Examples:
  gitsync sync                          # Update the current repository
  gitsync update ~/work/game            # Same, by alias, for another path
  gitsync sync --fallback-branch main   # Branch to pull when none resolves
  gitsync sync --json                   # Outcome as JSON for scripting`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, flags)
		},
	}
	bindSyncFlags(cmd.Flags(), &flags)
	return cmd
}

// bindSyncFlags registers the sync flags on fs.
func bindSyncFlags(fs *pflag.FlagSet, flags *syncFlags) {
	fs.BoolVar(&flags.noClient, "no-client", false, "Never open a GUI client on conflict")
	fs.StringVar(&flags.fallbackBranch, "fallback-branch", "", "Branch to pull when none can be resolved")
	fs.StringVar(&flags.marker, "marker", "", "Stash message used for the automatic stash")
	fs.DurationVar(&flags.stashTimeout, "stash-timeout", 0, "Timeout for git stash (0 disables)")
	fs.DurationVar(&flags.timeout, "timeout", 0, "Timeout for every other git command (0 disables)")
}

// applySyncFlags overlays the flags the user set onto cfg.
func applySyncFlags(cmd *cobra.Command, cfg config.Config, flags syncFlags) config.Config {
	changed := cmd.Flags().Changed
	if changed("no-client") && flags.noClient {
		off := false
		cfg.OpenClient = &off
	}
	if changed("fallback-branch") {
		cfg.FallbackBranch = flags.fallbackBranch
	}
	if changed("marker") && flags.marker != "" {
		cfg.Marker = flags.marker
	}
	if changed("stash-timeout") {
		d := config.Duration(flags.stashTimeout)
		cfg.StashTimeout = &d
	}
	if changed("timeout") {
		d := config.Duration(flags.timeout)
		cfg.CommandTimeout = &d
	}
	return cfg
}

// runSync executes the sync command.
func runSync(cmd *cobra.Command, args []string, flags syncFlags) error {
	printer := newPrinter(cmd)

	root, cfg, err := loadRepoConfig(cmd, args)
	if err != nil {
		printer.Error(err)
		return err
	}
	cfg = applySyncFlags(cmd, cfg, flags)

	held, err := lock.Acquire("", root)
	if err != nil {
		printer.Error(err)
		return err
	}
	defer func() { _ = held.Release() }()

	workflow := gitsync.New(cfg, nil)
	workflow.Logger = newLogger(cmd)
	workflow.Reporter = printer
	outcome := workflow.Run(cmd.Context(), root)

	if printer.IsJSON() {
		if err := printer.JSON(outcome); err != nil {
			return err
		}
		return outcome.Err()
	}

	printOutcome(printer, outcome, boolFlag(cmd, "verbose"))
	if err := outcome.Err(); err != nil {
		printer.Error(err)
		return err
	}
	return nil
}

// printOutcome renders the run summary for humans. Command output is shown
// for failed steps, and for every step with verbose. The caller reports the
// failure headline, so git output and guidance appear here only.
func printOutcome(printer *output.Printer, outcome gitsync.Outcome, verbose bool) {
	printer.Section("gitsync " + outcome.Repo)
	for _, step := range outcome.Summary.Steps {
		if step.Command == "" {
			printer.Indented(step.Note)
			continue
		}
		printer.Step(step.OK(), step.Command)
		if verbose || !step.OK() {
			printer.Indented(step.Stdout)
			printer.Indented(step.Stderr)
			printer.Indented(step.Error)
		}
	}
	printer.Blank()

	if outcome.Success {
		printer.Done(outcome.Message)
		return
	}
	if conflict.KindOf(outcome.Command) == conflict.KindStashPop && outcome.Stashed {
		printer.KeyValue("Stash", "entry kept; stash apply was attempted")
	}
	if outcome.Guidance != "" {
		printer.Box("Suggested resolution", outcome.Guidance)
	}
	if outcome.ClientLaunched != "" {
		printer.KeyValue("Opened", outcome.ClientLaunched)
	}
}

// loadRepoConfig resolves the work-tree root for the optional path argument
// and loads the layered configuration for it.
func loadRepoConfig(cmd *cobra.Command, args []string) (string, config.Config, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	root, err := git.FindRoot(path)
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(root, configPath(cmd))
	if err != nil {
		return "", config.Config{}, err
	}
	return root, cfg, nil
}
