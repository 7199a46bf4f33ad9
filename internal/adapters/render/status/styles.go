package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	stack      lipgloss.Style
	detail     lipgloss.Style
	untracked  lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	running    lipgloss.Style
	stopped    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		stack:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		untracked:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		running:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		stopped:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// statusStyle paints the status label with the embed color of the stack.
func statusStyle(color int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(hexColor(color)))
}
