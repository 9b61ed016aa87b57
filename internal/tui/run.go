package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"mytodo/internal/service"
)

// Run starts the program on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, svc service.Service, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, svc),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running terminal ui: %w", err)
	}
	if m, ok := final.(Model); ok {
		if m.stopFeed != nil {
			m.stopFeed()
		}
		return m.err
	}
	return nil
}
