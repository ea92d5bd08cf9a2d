package main

import (
	"github.com/spf13/cobra"

	"github.com/zaixsen/unityGitTool/internal/client"
	"github.com/zaixsen/unityGitTool/internal/config"
)

// newClientsCmd creates the clients command.
func newClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List the GUI git clients gitsync can open",
		Long: `List every install path gitsync checks for a GUI git client, in search order,
and which of them exist. TortoiseGit is preferred over SourceTree; when
neither is installed, conflicts open git gui.

Extra paths can be added under clients.tortoisegit and clients.sourcetree
in the config file.

Examples:
  gitsync clients          # Show checked paths
  gitsync clients --json   # Output as JSON`,
		Args: cobra.NoArgs,
		RunE: runClients,
	}
}

func runClients(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	cfg, err := config.Load("", configPath(cmd))
	if err != nil {
		printer.Error(err)
		return err
	}

	locator := &client.Locator{Extra: map[client.Tool][]string{
		client.TortoiseGit: cfg.Clients.TortoiseGit,
		client.SourceTree:  cfg.Clients.SourceTree,
	}}
	candidates := locator.Candidates()
	found, ok := locator.Find()
	fallback := cfg.GitBinary + " gui"

	if printer.IsJSON() {
		data := map[string]any{
			"candidates": candidates,
			"fallback":   fallback,
		}
		if ok {
			data["found"] = found
		}
		return printer.JSON(data)
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		status := "-"
		if c.Exists {
			status = "found"
		}
		rows = append(rows, []string{string(c.Tool), status, c.Path})
	}
	if len(rows) > 0 {
		printer.Table([]string{"TOOL", "STATUS", "PATH"}, rows)
		printer.Blank()
	}

	if ok {
		printer.KeyValue("Conflicts open", string(found.Tool)+" ("+found.Path+")")
	} else {
		printer.KeyValue("Conflicts open", fallback)
	}
	return nil
}
