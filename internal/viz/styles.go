package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel    lipgloss.Style
	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	ok       lipgloss.Style
	warn     lipgloss.Style
	bad      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		label:    lipgloss.NewStyle().Foreground(t.Muted),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Primary),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		ok:       lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		warn:     lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		bad:      lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// sliderRows renders a vertical slider of the given height, top row first.
// frac is the filled fraction in [0, 1].
func sliderRows(frac float64, height int) []string {
	if math.IsNaN(frac) {
		frac = 0
	}
	frac = math.Max(0, math.Min(1, frac))
	filled := int(math.Round(frac * float64(height)))
	rows := make([]string, height)
	for i := range rows {
		if height-i <= filled {
			rows[i] = "███"
		} else {
			rows[i] = " │ "
		}
	}
	return rows
}
