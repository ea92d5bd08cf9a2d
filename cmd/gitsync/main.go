// Command gitsync updates a working copy from its upstream without losing
// local work: stash, pull --rebase, stash pop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zaixsen/unityGitTool/internal/output"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// git runs in its own process group, so an interrupt reaches it through
// context cancellation rather than the terminal.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(buildVersion()))
	stop()
	os.Exit(output.GetExitCode(err))
}

func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, short, date)
}

// lookupFlag finds name on the command or on the root's persistent flags.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.Root().PersistentFlags().Lookup(name)
}

func stringFlag(cmd *cobra.Command, name string) string {
	if f := lookupFlag(cmd, name); f != nil {
		return f.Value.String()
	}
	return ""
}

func boolFlag(cmd *cobra.Command, name string) bool {
	return stringFlag(cmd, name) == "true"
}

func isJSONMode(cmd *cobra.Command) bool { return boolFlag(cmd, "json") }

func useColor(cmd *cobra.Command) bool {
	return output.ResolveColorMode(stringFlag(cmd, "color"), output.IsTTY(cmd.OutOrStdout()))
}

// configPath is the --config file, or "" for the default location.
func configPath(cmd *cobra.Command) string { return stringFlag(cmd, "config") }

// newPrinter is the printer every subcommand writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// newLogger logs warnings to stderr, or every git invocation with --verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if boolFlag(cmd, "verbose") {
		opts.Level = slog.LevelDebug
	}
	if stringFlag(cmd, "log-format") == "json" {
		return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
}

type commandGroup struct {
	id, title string
	commands  []func() *cobra.Command
}

var commandGroups = []commandGroup{
	{"core", "Core Commands:", []func() *cobra.Command{newSyncCmd}},
	{"inspect", "Inspection Commands:", []func() *cobra.Command{newUpstreamCmd, newClassifyCmd, newClientsCmd, newConfigCmd}},
	{"agent", "Agent Commands:", []func() *cobra.Command{newServeCmd}},
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gitsync",
		Short: "Stash, rebase onto upstream, and restore local work",
		Long: `gitsync updates a working copy without losing local changes.

It runs the sequence a game team otherwise types by hand many times a day:
  git stash -u          shelve modified and untracked files
  git pull --rebase     replay local commits on the tracking upstream
  git stash pop         restore the shelved work

When a step fails with what looks like a merge or rebase conflict, gitsync
prints resolution steps and opens TortoiseGit, SourceTree or git gui.

Exit codes: 0 success, 1 usage, 2 git failure, 3 conflict, 4 timeout.
Every command accepts --json.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return output.ValidateColorMode(stringFlag(cmd, "color"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isJSONMode(cmd) {
				return cmd.Help()
			}
			err := output.NewUserError("no command specified. Run 'gitsync --help' for usage")
			newPrinter(cmd).Error(err)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.String("color", "auto", "Color output: auto, always or never")
	flags.String("config", "", "Config file (default: <config dir>/config.yaml)")
	flags.BoolP("verbose", "v", false, "Log every git invocation and show command output")
	flags.String("log-format", "text", "Log format: text or json")

	lipgloss.SetHasDarkBackground(true)

	for _, group := range commandGroups {
		root.AddGroup(&cobra.Group{ID: group.id, Title: group.title})
		for _, newCmd := range group.commands {
			child := newCmd()
			child.GroupID = group.id
			root.AddCommand(child)
		}
	}
	return root
}
