package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the item browser and blocks until the user quits.
func Run(ctx context.Context, svc ItemLister, offline bool) error {
	program := tea.NewProgram(New(ctx, svc, offline))
	_, err := program.Run()
	return err
}
