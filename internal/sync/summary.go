package sync

import (
	"fmt"
	"strings"
	"time"
)

// Step is one entry of the run summary: an executed git command, or a note
// the workflow recorded between commands.
type Step struct {
	Command  string        `json:"command,omitempty"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exit_code"`
	TimedOut bool          `json:"timed_out,omitempty"`
	Error    string        `json:"error,omitempty"`
	Note     string        `json:"note,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// OK reports whether the step was a note or a command that exited zero.
func (s Step) OK() bool {
	return s.Command == "" || (s.ExitCode == 0 && !s.TimedOut && s.Error == "")
}

// Summary is the ordered list of steps taken during one run.
type Summary struct {
	Steps []Step `json:"steps"`
}

// Commands returns the command lines that were executed, in order.
func (s Summary) Commands() []string {
	var cmds []string
	for _, step := range s.Steps {
		if step.Command != "" {
			cmds = append(cmds, step.Command)
		}
	}
	return cmds
}

// String renders the summary as plain text: each command followed by its
// output, notes on their own lines.
func (s Summary) String() string {
	var b strings.Builder
	for _, step := range s.Steps {
		if step.Command == "" {
			fmt.Fprintf(&b, "# %s\n", step.Note)
			continue
		}
		fmt.Fprintf(&b, "$ %s\n", step.Command)
		writeBlock(&b, "", step.Stdout)
		writeBlock(&b, "stderr: ", step.Stderr)
		if step.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", step.Error)
		} else if step.ExitCode != 0 {
			fmt.Fprintf(&b, "exit status %d\n", step.ExitCode)
		}
	}
	return b.String()
}

func writeBlock(b *strings.Builder, prefix, text string) {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(prefix)
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteByte('\n')
	}
}
