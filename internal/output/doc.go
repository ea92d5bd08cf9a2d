// Package output provides structured output handling for the gitsync CLI.
//
// Every command writes through a Printer, which switches between styled
// human output and JSON based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))
//	printer.Progress("pull --rebase", 0.6)
//	printer.Step(true, "git stash -u -m UnityToolbarAuto")
//	printer.Error(err)
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad arguments, not a repository, bad config
//	output.ExitSystemError // 2: git failed or could not start
//	output.ExitConflict    // 3: conflict detected, repository busy
//	output.ExitTimeout     // 4: a git command timed out
//
// Errors built with NewUserError, NewSystemError, NewConflictError and
// NewTimeoutError carry their code to both the JSON error body and the
// process exit status.
package output
