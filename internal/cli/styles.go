package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

const barWidth = 10

// ProgressBar renders rate (0-100) as a fixed-width bar.
func ProgressBar(rate int) string {
	rate = max(0, min(rate, 100))
	filled := (rate*barWidth + 50) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if rate >= 100 {
		return SuccessStyle.Render(bar)
	}
	return bar
}
