package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"prdeck/internal/logging"
	"prdeck/internal/tui"
	"prdeck/internal/view"
)

// RunCmd starts the TUI application
type RunCmd struct {
	Query string `help:"Initial search query (qualifiers are added for the repository and is:pr)" short:"q"`
}

// Run executes the TUI
func (r *RunCmd) Run(cli *CLI) error {
	owner, name, err := cli.repository()
	if err != nil {
		return err
	}
	svc, err := cli.service()
	if err != nil {
		return err
	}

	logging.Logger.Info("Starting TUI", "owner", owner, "repo", name, "query", r.Query)

	m := tui.New(tui.Options{
		Service:  svc,
		Views:    &view.Builder{},
		Owner:    owner,
		Repo:     name,
		PageSize: cli.settings().Repo.PageSize,
		Query:    r.Query,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
