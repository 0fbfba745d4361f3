package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	document lipgloss.Style
	id       lipgloss.Style
	detail   lipgloss.Style
	kind     lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	unsaved  lipgloss.Style
	saving   lipgloss.Style
	saved    lipgloss.Style
	failed   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		document: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		id:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		kind:     lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		unsaved:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		saving:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		saved:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		failed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
