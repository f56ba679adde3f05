package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

// Run starts the editor on the alternate screen and blocks until the learner
// quits or ctx is cancelled.
func Run(ctx context.Context, eng *practice.Engine, learner string, opts ...tea.ProgramOption) error {
	m, err := New(ctx, eng, learner)
	if err != nil {
		return err
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run editor: %w", err)
	}

	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
