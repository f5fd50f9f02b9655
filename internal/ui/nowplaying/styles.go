package nowplaying

import "github.com/charmbracelet/lipgloss"

var theme = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	FgBase    lipgloss.Color
	FgMuted   lipgloss.Color
	FgSubtle  lipgloss.Color
	Border    lipgloss.Color
	Error     lipgloss.Color
}{
	Primary:   lipgloss.Color("#a78bfa"),
	Secondary: lipgloss.Color("#f1a208"),
	FgBase:    lipgloss.Color("#c0c0c0"),
	FgMuted:   lipgloss.Color("#808080"),
	FgSubtle:  lipgloss.Color("#585858"),
	Border:    lipgloss.Color("#585858"),
	Error:     lipgloss.Color("#ff5555"),
}

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Foreground(theme.FgBase).Bold(true)
	artistStyle  = lipgloss.NewStyle().Foreground(theme.FgMuted)
	mutedStyle   = lipgloss.NewStyle().Foreground(theme.FgSubtle)
	playingStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	modeOnStyle  = lipgloss.NewStyle().Foreground(theme.Secondary)
	errorStyle   = lipgloss.NewStyle().Foreground(theme.Error)
)
