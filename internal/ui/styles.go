package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	MeterTitle lipgloss.Style
	Status     lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Faint      lipgloss.Style
	Box        lipgloss.Style
	Spinner    lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:      base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Subtitle:   base.Faint(true),
		MeterTitle: base.Foreground(lipgloss.Color("#A3A3A3")),
		Status:     base.Foreground(lipgloss.Color("#D1D5DB")),
		Success:    base.Foreground(lipgloss.Color("#22C55E")),
		Error:      base.Foreground(lipgloss.Color("#EF4444")),
		Faint:      base.Faint(true),
		Box:        base.Padding(0, 1),
		Spinner:    base.Foreground(lipgloss.Color("#22D3EE")),
	}
}
