package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zaixsen/unityGitTool/internal/git"
	"github.com/zaixsen/unityGitTool/internal/process"
)

// newUpstreamCmd creates the upstream command.
func newUpstreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upstream [path]",
		Short: "Show the remote and branch sync would pull from",
		Long: `Resolve the upstream without changing the repository.

Uses the branch's tracking upstream when configured. Otherwise picks the
"origin" remote (or the first remote) and the current branch, the remote's
default branch when HEAD is detached, or the configured fallback branch.

Examples:
  gitsync upstream          # Show the upstream of the current repository
  gitsync upstream --json   # Output as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUpstream,
	}
}

func runUpstream(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	root, cfg, err := loadRepoConfig(cmd, args)
	if err != nil {
		printer.Error(err)
		return err
	}

	repo := git.New(process.Exec{}, root,
		git.WithBinary(cfg.GitBinary),
		git.WithTimeout(cfg.CommandTimeoutValue()),
	)
	up := repo.ResolveUpstream(cmd.Context(), cfg.FallbackBranch)
	pull := "git " + strings.Join(up.PullArgs(), " ")

	if printer.IsJSON() {
		return printer.JSON(map[string]any{
			"repo":         root,
			"remote":       up.Remote,
			"branch":       up.Branch,
			"tracking":     up.Tracking,
			"pull_command": pull,
		})
	}

	printer.KeyValue("Repository", root)
	printer.KeyValue("Upstream", up.String())
	if up.Tracking {
		printer.KeyValue("Source", "tracking branch")
	} else {
		printer.KeyValue("Source", "resolved fallback")
	}
	printer.KeyValue("Pull", pull)
	return nil
}
