package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the console's colour scheme.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:      "dark",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#4488aa"),
		Accent:    lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeLight = Theme{
		Name:      "light",
		Primary:   lipgloss.Color("#005f87"),
		Secondary: lipgloss.Color("#0087af"),
		Accent:    lipgloss.Color("#af005f"),
		Text:      lipgloss.Color("#1c1c1c"),
		Muted:     lipgloss.Color("#8a8a8a"),
		Success:   lipgloss.Color("#008700"),
		Warning:   lipgloss.Color("#af5f00"),
		Error:     lipgloss.Color("#d70000"),
	}

	Themes = []Theme{ThemeDark, ThemeLight}
)

// GetTheme returns a theme by name, dark if unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDark
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDark
}
