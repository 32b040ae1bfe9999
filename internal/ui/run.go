package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives produce under the full-screen progress display and returns
// the producer's error.
func Run(ctx context.Context, produce Producer, out io.Writer, o Options) error {
	m, err := NewModel(ctx, produce, o)
	if err != nil {
		return err
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	prog := tea.NewProgram(m, opts...)
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
