package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(0, 0, 1, 0)

	PanelStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(palette.Text)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)
