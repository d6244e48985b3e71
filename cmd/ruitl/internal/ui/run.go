package ui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/recera/ruitl/internal/scaffold"
)

// ErrCanceled is returned when the user quits the wizard
var ErrCanceled = errors.New("project creation cancelled")

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunScaffold runs the wizard and returns the confirmed options. Without
// a terminal it falls back to line prompts on stdin.
func RunScaffold(opts scaffold.Options) (scaffold.Options, error) {
	if !IsTerminal(os.Stdin) || !IsTerminal(os.Stdout) {
		return NewPrompter(os.Stdin, os.Stdout).Scaffold(opts)
	}

	final, err := tea.NewProgram(NewModel(opts)).Run()
	if err != nil {
		return opts, fmt.Errorf("TUI error: %w", err)
	}
	result, ok := final.(Model).Result()
	if !ok {
		return opts, ErrCanceled
	}
	return result, nil
}
