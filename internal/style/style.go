// Package style renders terminal output for recipe runs. Colors degrade to
// plain text when the writer is not a terminal or NO_COLOR is set, which
// lipgloss detects per writer.
package style

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors accepted by say steps.
var (
	ColorBlue   = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}
)

var colors = map[string]lipgloss.AdaptiveColor{
	"blue":   ColorBlue,
	"green":  ColorGreen,
	"red":    ColorRed,
	"yellow": ColorYellow,
}

// Printer writes styled lines to one writer.
type Printer struct {
	w io.Writer
	r *lipgloss.Renderer

	ok, warn, fail, info, dim lipgloss.Style
}

// New returns a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:    w,
		r:    r,
		ok:   r.NewStyle().Foreground(ColorGreen).Bold(true),
		warn: r.NewStyle().Foreground(ColorYellow).Bold(true),
		fail: r.NewStyle().Foreground(ColorRed).Bold(true),
		info: r.NewStyle().Foreground(ColorBlue),
		dim:  r.NewStyle().Foreground(ColorMuted),
	}
}

// Say prints msg followed by a newline, in color when one is named. An empty
// msg prints a blank line.
func (p *Printer) Say(msg, color string) {
	c, ok := colors[color]
	if !ok {
		fmt.Fprintln(p.w, msg)
		return
	}
	fmt.Fprintln(p.w, renderLines(p.r.NewStyle().Foreground(c), msg))
}

// Step announces a step about to run.
func (p *Printer) Step(index, total int, id, detail string) {
	counter := p.dim.Render(fmt.Sprintf("[%d/%d]", index, total))
	if detail == "" {
		fmt.Fprintf(p.w, "%s %s\n", counter, p.info.Render(id))
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", counter, p.info.Render(id), p.dim.Render(detail))
}

// OK prints a "[ OK ]" line.
func (p *Printer) OK(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("[ OK ]"), fmt.Sprintf(format, args...))
}

// Warn prints a "[WARN]" line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.warn.Render("[WARN]"), fmt.Sprintf(format, args...))
}

// Fail prints a "[FAIL]" line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.fail.Render("[FAIL]"), fmt.Sprintf(format, args...))
}

// Skip prints a "[SKIP]" line.
func (p *Printer) Skip(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.dim.Render("[SKIP]"), fmt.Sprintf(format, args...))
}

// renderLines styles each line on its own so lipgloss does not pad lines
// to a common width.
func renderLines(s lipgloss.Style, msg string) string {
	lines := strings.Split(msg, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = s.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
