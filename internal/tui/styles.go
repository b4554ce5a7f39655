package tui

import (
	"github.com/charmbracelet/lipgloss"

	"prdeck/internal/badge"
	"prdeck/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle    = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	purpleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	detailHeadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().Faint(true)
)

func badgeStyle(color string) lipgloss.Style {
	switch color {
	case badge.ColorSuccess:
		return okStyle
	case badge.ColorDanger:
		return errStyle
	case badge.ColorAttention:
		return warnStyle
	case badge.ColorDone, badge.ColorPurple:
		return purpleStyle
	}
	return dimStyle
}

func stateStyle(state string) lipgloss.Style {
	switch state {
	case model.StateApproved:
		return okStyle
	case model.StateChangesRequested:
		return errStyle
	case model.StateReviewPending:
		return warnStyle
	case model.StateMerged:
		return purpleStyle
	}
	return dimStyle
}

// githubLabelStyle colours a label the way GitHub does, from its hex colour.
func githubLabelStyle(color string) lipgloss.Style {
	if len(color) != 6 {
		return dimStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#" + color))
}
