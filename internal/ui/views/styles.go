package views

import (
	"github.com/charmbracelet/lipgloss"

	"quarkgrid/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Locked      lipgloss.Style
	Cell        lipgloss.Style
	CellActive  lipgloss.Style
	CellOff     lipgloss.Style
	Card        lipgloss.Style
	Feed        lipgloss.Style
	Main        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241")),
		TabActive: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("226")).Underline(true),
		Dim:       lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).MarginTop(1), // red
		Locked:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),  // yellow
		Cell:        lipgloss.NewStyle().Width(4).Align(lipgloss.Center),
		CellActive: lipgloss.NewStyle().Width(4).Align(lipgloss.Center).
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("226")),
		CellOff: lipgloss.NewStyle().Width(4).Align(lipgloss.Center).Foreground(lipgloss.Color("238")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2).
			Width(44),
		Feed: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Main: lipgloss.NewStyle().Padding(1, 2),
	}
}

// CategoryColor returns the colour used for an element category
func CategoryColor(category string) string {
	switch category {
	case "alkali metal":
		return "203" // red
	case "alkaline earth metal":
		return "214" // orange
	case "transition metal":
		return "180"
	case "post-transition metal":
		return "109"
	case "metalloid":
		return "78" // green
	case "halogen":
		return "51" // cyan
	case "noble gas":
		return "141" // purple
	default:
		return "252"
	}
}

// StateBadge renders a short marker for non-selectable pages
func StateBadge(s domain.PageState) string {
	switch s {
	case domain.StateDisabled:
		return "disabled"
	case domain.StateUnavailable:
		return "unavailable"
	case domain.StateInactive:
		return "inactive"
	default:
		return ""
	}
}
