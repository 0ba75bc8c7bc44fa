// Package ui renders monexel screens for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.Color("#a6e3a1")
	colorDanger  = lipgloss.Color("#f38ba8")
	colorWarning = lipgloss.Color("#f9e2af")
	colorInfo    = lipgloss.Color("#89b4fa")
	colorMuted   = lipgloss.Color("#7f849c")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(22)
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
