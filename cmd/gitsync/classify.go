package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/conflict"
	"github.com/zaixsen/unityGitTool/internal/output"
)

// newClassifyCmd creates the classify command.
func newClassifyCmd() *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Check failed git output for conflicts and print guidance",
		Long: `Read the output of a failed git command from file (or stdin) and report
whether it looks like a conflict. Matching is a case-insensitive substring
search over the configured conflict keywords.

Guidance is only given for rebase pulls and stash pops.

Examples:
  git pull --rebase 2>&1 | gitsync classify --command "git pull --rebase"
  gitsync classify --command "git stash pop" pop.log
  gitsync classify --command "git stash pop" pop.log --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, command)
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "The git command that produced the output (required)")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string, command string) error {
	printer := newPrinter(cmd)

	text, err := readInput(cmd, args)
	if err != nil {
		printer.Error(err)
		return err
	}

	cfg, err := config.Load("", configPath(cmd))
	if err != nil {
		printer.Error(err)
		return err
	}

	classifier := conflict.New(cfg.ConflictKeywords)
	keyword, matched := classifier.Match(text)
	guidance := classifier.Classify(command, text)
	kind := conflict.KindOf(command)

	if printer.IsJSON() {
		return printer.JSON(map[string]any{
			"kind":     string(kind),
			"matched":  matched,
			"keyword":  keyword,
			"guidance": guidance,
		})
	}

	printer.KeyValue("Command kind", string(kind))
	if !matched {
		printer.KeyValue("Conflict", "no")
		return nil
	}
	printer.KeyValue("Conflict", "yes (matched \""+keyword+"\")")
	if guidance != "" {
		printer.Box("Suggested resolution", guidance)
	}
	return nil
}

// readInput reads the file argument, or stdin when none is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", output.NewSystemErrorWithCause("reading stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", output.NewUserError("cannot read " + args[0] + ": " + err.Error())
	}
	return string(data), nil
}
