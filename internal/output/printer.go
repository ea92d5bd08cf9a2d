package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

type theme struct {
	fail, ok, accent, heading, key, dim lipgloss.Style
	border                              lipgloss.TerminalColor
}

func newTheme(styled bool) theme {
	if !styled {
		plain := lipgloss.NewStyle()
		return theme{fail: plain, ok: plain, accent: plain, heading: plain, key: plain, dim: plain, border: lipgloss.NoColor{}}
	}
	return theme{
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		accent:  lipgloss.NewStyle().Bold(true),
		heading: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		border:  lipgloss.Color("8"),
	}
}

// Printer writes command results either as styled text or as JSON.
// Results go to the main writer. Errors and progress go to the diagnostic
// writer in human mode, and errors go to the main writer in JSON mode so
// that stdout always holds one JSON document.
type Printer struct {
	out    io.Writer
	diag   io.Writer
	json   bool
	styled bool
	theme  theme
	bar    progress.Model
}

// NewPrinter returns a Printer writing to w. styled enables colors, borders
// and the progress bar.
func NewPrinter(w io.Writer, jsonMode, styled bool) *Printer {
	return &Printer{
		out:    w,
		diag:   w,
		json:   jsonMode,
		styled: styled,
		theme:  newTheme(styled),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

// WithStderr routes human-mode errors and progress to w.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.diag = w
	return p
}

func (p *Printer) IsJSON() bool { return p.json }

// JSON writes v as one indented JSON document.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Error reports err with its exit status. JSON mode writes
// {"error", "code", "kind"} to the main writer.
func (p *Printer) Error(err error) {
	exitErr := asExitError(err)
	if p.json {
		p.write(p.out, "%s\n", ErrorJSON(exitErr))
		return
	}
	p.write(p.diag, "%s: %s\n", p.theme.fail.Render("Error"), exitErr.Message)
}

// ErrorJSON encodes the error body used by the CLI and the MCP server.
func ErrorJSON(err *ExitError) []byte {
	body, _ := json.Marshal(map[string]any{
		"error": err.Message,
		"code":  err.Code,
		"kind":  err.Kind(),
	})
	return body
}

// Done prints a final success line.
func (p *Printer) Done(message string) {
	p.write(p.out, "%s\n", p.theme.ok.Render(message))
}

// Textf writes formatted text unstyled.
func (p *Printer) Textf(format string, args ...any) {
	p.write(p.out, format, args...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	p.write(p.out, "\n")
}

// write panics on failure: the writers are the process streams or
// in-memory buffers.
func (p *Printer) write(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
