// Package ui implements scribe's terminal editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrNotTTY is returned by Run when the output is not a terminal.
var ErrNotTTY = errors.New("output is not a terminal")

// Run starts the editor on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ed *Editor, out io.Writer, opts ...tea.ProgramOption) error {
	if !IsTTY(out) {
		return ErrNotTTY
	}

	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	}, opts...)

	if _, err := tea.NewProgram(ed, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
