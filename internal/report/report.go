// Package report prints operator-facing status lines in four categories:
// failure, warning, info, and success. Output goes to the error stream
// only; nothing printed here is ever machine-parsed.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF7F"))
)

// Reporter writes categorized status messages to a single stream
type Reporter struct {
	out io.Writer
}

// New returns a Reporter writing to stderr
func New() *Reporter {
	return &Reporter{out: os.Stderr}
}

// NewWithWriter returns a Reporter writing to w. Used by tests.
func NewWithWriter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Fail reports a fatal condition
func (r *Reporter) Fail(format string, args ...any) {
	r.print(failStyle, "FAIL", format, args...)
}

// Warn reports a non-fatal anomaly
func (r *Reporter) Warn(format string, args ...any) {
	r.print(warnStyle, "WARN", format, args...)
}

// Info reports progress
func (r *Reporter) Info(format string, args ...any) {
	r.print(infoStyle, "INFO", format, args...)
}

// Done reports successful completion
func (r *Reporter) Done(format string, args ...any) {
	r.print(doneStyle, "DONE", format, args...)
}

func (r *Reporter) print(style lipgloss.Style, tag, format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", style.Render(tag), fmt.Sprintf(format, args...))
}
