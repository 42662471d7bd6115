package presentation

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	archivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	insertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	deleteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Strikethrough(true)
)
