package main

import (
	"github.com/spf13/cobra"

	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/git"
)

// newConfigCmd creates the config command.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Print the effective configuration",
		Long: `Print the configuration sync would use for the repository at path.

Layers, later wins:
  1. built-in defaults
  2. <config dir>/config.yaml, or the file given with --config
  3. <repo>/.gitsync.yaml

Outside a repository only the first two layers apply.

Examples:
  gitsync config                 # YAML for the current repository
  gitsync config --json          # Same as JSON
  gitsync config --config ci.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	root, err := git.FindRoot(path)
	if err != nil {
		if len(args) > 0 {
			printer.Error(err)
			return err
		}
		root = ""
	}

	cfg, err := config.Load(root, configPath(cmd))
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.JSON(map[string]any{
			"repo":        root,
			"global_file": config.GlobalFile(),
			"config":      cfg,
		})
	}

	data, err := cfg.Marshal()
	if err != nil {
		printer.Error(err)
		return err
	}
	if root != "" {
		printer.Textf("# repo: %s\n", root)
	}
	printer.Textf("%s", data)
	return nil
}
