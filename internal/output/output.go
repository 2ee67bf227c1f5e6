// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	hit      lipgloss.Style
	label    lipgloss.Style
}

// New creates a Writer without color.
func New(out io.Writer) *Writer {
	return &Writer{
		out:   out,
		hit:   lipgloss.NewStyle().Reverse(true).Bold(true),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// NewForFile creates a Writer that colors output when f is a terminal and
// NO_COLOR is unset.
func NewForFile(f *os.File) *Writer {
	w := New(f)
	w.useColor = os.Getenv("NO_COLOR") == "" &&
		(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	return w
}

// UseColor reports whether the writer emits ANSI styling.
func (w *Writer) UseColor() bool {
	return w.useColor
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a block with each line indented.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Match prints a search hit grep style: "label:line:col: text".
// line and col are 1-based. start and end are rune offsets of the match
// within text and are clamped to it; with color on, that span is
// highlighted.
func (w *Writer) Match(label string, line, col int, text string, start, end int) {
	runes := []rune(text)
	start = clampInt(start, 0, len(runes))
	end = clampInt(end, start, len(runes))

	body := text
	if w.useColor && end > start {
		body = string(runes[:start]) + w.hit.Render(string(runes[start:end])) + string(runes[end:])
	}

	prefix := fmt.Sprintf("%d:%d:", line, col)
	if label != "" {
		prefix = label + ":" + prefix
	}
	if w.useColor {
		prefix = w.label.Render(prefix)
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", prefix, body)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
