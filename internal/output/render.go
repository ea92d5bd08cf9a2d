package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress reports a workflow stage: a bar on a styled terminal, a
// percentage line otherwise. Silent in JSON mode.
func (p *Printer) Progress(stage string, fraction float64) {
	if p.json {
		return
	}
	fraction = max(0, min(1, fraction))
	if p.styled {
		p.write(p.diag, "%s %s\n", p.bar.ViewAs(fraction), p.theme.dim.Render(stage))
		return
	}
	p.write(p.diag, "[%3.0f%%] %s\n", fraction*100, stage)
}

// Step prints an executed command marked ✓ or ✗.
func (p *Printer) Step(ok bool, command string) {
	mark := p.theme.ok.Render("✓")
	if !ok {
		mark = p.theme.fail.Render("✗")
	}
	p.write(p.out, "%s %s\n", mark, p.theme.accent.Render(command))
}

// Indented prints command output under the step it belongs to.
func (p *Printer) Indented(text string) {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return
	}
	for line := range strings.SplitSeq(text, "\n") {
		p.write(p.out, "    %s\n", p.theme.dim.Render(strings.TrimRight(line, "\r")))
	}
}

// Section starts a titled block.
func (p *Printer) Section(title string) {
	rule := strings.Repeat("─", lipgloss.Width(title))
	p.write(p.out, "\n%s\n%s\n", p.theme.heading.Render(title), p.theme.dim.Render(rule))
}

func (p *Printer) KeyValue(key, value string) {
	p.write(p.out, "%s %s\n", p.theme.key.Render(key+":"), value)
}

// Box frames guidance text. Unstyled output prints the title and text
// without a border.
func (p *Printer) Box(title, text string) {
	if !p.styled {
		p.write(p.out, "%s\n\n%s\n", title, text)
		return
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.border).
		Padding(0, 1)
	p.write(p.out, "%s\n", frame.Render(p.theme.heading.Render(title)+"\n\n"+text))
}

// Table prints rows in columns sized to their widest cell. Headers are bold.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	p.tableRow(headers, widths, p.theme.accent)
	for _, row := range rows {
		p.tableRow(row, widths, lipgloss.NewStyle())
	}
}

func (p *Printer) tableRow(cells []string, widths []int, style lipgloss.Style) {
	var b strings.Builder
	for i := 0; i < len(cells) && i < len(widths); i++ {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := cells[i]
		if i < len(widths)-1 {
			cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		b.WriteString(style.Render(cell))
	}
	p.write(p.out, "%s\n", b.String())
}
