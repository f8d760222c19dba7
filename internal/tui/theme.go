package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// Theme holds the color scheme for the console.
type Theme struct {
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Hint     lipgloss.Color
	Border   lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color
	Error    lipgloss.Color
}

// DefaultTheme is the dark laboratory palette.
var DefaultTheme = Theme{
	Accent:   lipgloss.Color("#06B6D4"), // cyan
	Text:     lipgloss.Color("#E2E8F0"), // slate
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Border:   lipgloss.Color("#334155"),
	Success:  lipgloss.Color("#10B981"), // emerald
	Warning:  lipgloss.Color("#EAB308"), // yellow
	Critical: lipgloss.Color("#EF4444"), // red
	Error:    lipgloss.Color("#FF005F"),
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) activeTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true).
		Padding(0, 1)
}

func (t Theme) tabStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Padding(0, 1)
}

func (t Theme) cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2)
}

func (t Theme) valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text).Bold(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

// badgeStyle colors the intensity range badge by severity.
func (t Theme) badgeStyle(s peak.Severity) lipgloss.Style {
	color := t.Success
	switch s {
	case peak.SeverityWarning:
		color = t.Warning
	case peak.SeverityCritical:
		color = t.Critical
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
