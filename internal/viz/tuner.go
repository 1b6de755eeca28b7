package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/tuning"
)

// RefreshRate is how often the console redraws.
const RefreshRate = 30

const (
	sliderHeight = 10
	plotWidth    = 48
	plotHeight   = 6
)

// Step is the coarse and fine increment for one parameter.
type Step struct {
	Coarse, Fine float64
}

// DefaultSteps returns the adjustment increments per parameter.
func DefaultSteps() map[string]Step {
	return map[string]Step{
		tuning.KP:        {Coarse: 0.1, Fine: 0.01},
		tuning.KI:        {Coarse: 0.001, Fine: 0.0001},
		tuning.KD:        {Coarse: 0.1, Fine: 0.01},
		tuning.MotorGain: {Coarse: 0.1, Fine: 0.01},
	}
}

// Source is what the console reads. Reports and History may be zero-valued
// readers, in which case the matching panes show no data.
type Source struct {
	Title   string
	Panel   *tuning.Panel
	Reports shared.Reader[loop.Report]
	History shared.Reader[history.Snapshot]
}

type TickMsg time.Time

type Model struct {
	src     Source
	names   []string
	steps   map[string]Step
	initial tuning.Values

	selected int
	theme    Theme
	styles   styles
	showHelp bool
	status   string

	width, height int
	quitting      bool
}

func NewModel(src Source) Model {
	if src.Title == "" {
		src.Title = "xosa"
	}
	return Model{
		src:     src,
		names:   src.Panel.Names(),
		steps:   DefaultSteps(),
		initial: src.Panel.Values(),
		theme:   ThemeDark,
		styles:  newStyles(ThemeDark),
	}
}

// WithTheme returns a copy of m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme)
	return m
}

func (m Model) Selected() string { return m.names[m.selected] }

func (m Model) Theme() Theme { return m.theme }

func tick() tea.Cmd {
	return tea.Tick(time.Second/RefreshRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp && msg.String() != "q" && msg.String() != "ctrl+c" {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.selected = (m.selected + 1) % len(m.names)
	case "shift+tab":
		m.selected = (m.selected + len(m.names) - 1) % len(m.names)
	case "up", "k":
		m.nudge(m.steps[m.Selected()].Coarse)
	case "down", "j":
		m.nudge(-m.steps[m.Selected()].Coarse)
	case "right", "l":
		m.nudge(m.steps[m.Selected()].Fine)
	case "left", "h":
		m.nudge(-m.steps[m.Selected()].Fine)
	case "r":
		if err := m.src.Panel.Set(m.initial); err != nil {
			m.status = err.Error()
		} else {
			m.status = "restored starting values"
		}
	case "t":
		m.theme = nextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = true
	}
	return m, nil
}

func (m *Model) nudge(delta float64) {
	name := m.Selected()
	v, err := m.src.Panel.Nudge(name, delta)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s = %.4f", name, v)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var rep loop.Report
	if m.src.Reports.Valid() {
		rep = m.src.Reports.Read()
	}

	header := m.styles.title.Render(m.src.Title) + "  " + m.renderStatus(rep)
	left := m.styles.panel.Render(m.renderSliders())
	right := m.styles.panel.Render(m.renderPlots())
	thrust := m.styles.panel.Render(m.renderThrust(rep))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right, thrust)
	footer := m.styles.help.Render("tab select  ↑/↓ coarse  ←/→ fine  r restore  t theme  ? help  q quit")
	if m.status != "" {
		footer = m.styles.value.Render(m.status) + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderStatus(rep loop.Report) string {
	parts := []string{
		m.styles.label.Render("tick ") + m.styles.value.Render(fmt.Sprintf("%d", rep.Tick)),
		m.styles.label.Render("overruns ") + m.styles.value.Render(fmt.Sprintf("%d", rep.Overruns)),
	}
	if rep.PublishFailures > 0 {
		parts = append(parts, m.styles.bad.Render(fmt.Sprintf("publish failures %d", rep.PublishFailures)))
	}
	if rep.Saturated() {
		parts = append(parts, m.styles.warn.Render("SATURATED"))
	} else {
		parts = append(parts, m.styles.ok.Render("OK"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderSliders() string {
	cols := make([]string, len(m.names))
	for i, name := range m.names {
		v, _ := m.src.Panel.Get(name)
		_, hi, _ := m.src.Panel.Range(name)
		frac := 0.0
		if hi > 0 {
			frac = v / hi
		}

		style := m.styles.graph
		label := m.styles.label
		if i == m.selected {
			style = m.styles.selected
			label = m.styles.selected
		}

		var b strings.Builder
		for _, row := range sliderRows(frac, sliderHeight) {
			b.WriteString(style.Render(row))
			b.WriteByte('\n')
		}
		b.WriteString(label.Render(name))
		b.WriteByte('\n')
		b.WriteString(m.styles.value.Render(fmt.Sprintf("%.4g", v)))
		cols[i] = lipgloss.NewStyle().Width(12).Render(b.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderPlots() string {
	var snap history.Snapshot
	if m.src.History.Valid() {
		snap = m.src.History.Read()
	}
	lin, ang := snap.Values()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.plot(lin, "linear error"),
		"",
		m.plot(ang, "angular error"),
	)
}

func (m Model) plot(data []float64, caption string) string {
	if len(data) < 2 {
		return m.styles.label.Render(caption+": waiting for data") + strings.Repeat("\n", plotHeight)
	}
	if len(data) > plotWidth*4 {
		data = data[len(data)-plotWidth*4:]
	}
	g := asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("%s  (latest %+.4f)", caption, data[len(data)-1])),
	)
	return m.styles.graph.Render(g)
}

func (m Model) renderThrust(rep loop.Report) string {
	limit := rep.MotorGain
	if limit <= 0 {
		limit = 1
	}
	c := NewCanvas(14, 6)
	c.DrawThrust(rep.Thrust.Left, rep.Thrust.Right, limit)

	var b strings.Builder
	b.WriteString(m.styles.graph.Render(c.String()))
	fmt.Fprintf(&b, "%s %s\n", m.styles.label.Render("L"), m.styles.value.Render(fmt.Sprintf("%+.4f", rep.Thrust.Left)))
	fmt.Fprintf(&b, "%s %s\n", m.styles.label.Render("R"), m.styles.value.Render(fmt.Sprintf("%+.4f", rep.Thrust.Right)))
	fmt.Fprintf(&b, "%s %s", m.styles.label.Render("gain"), m.styles.value.Render(fmt.Sprintf("%.3g", rep.MotorGain)))

	sat := func(axis string, on bool) string {
		if on {
			return m.styles.warn.Render(axis + " sat")
		}
		return m.styles.label.Render(axis + " ok")
	}
	b.WriteByte('\n')
	b.WriteString(sat("lin", rep.Linear.Saturated) + " " + sat("ang", rep.Angular.Saturated))
	return b.String()
}

func (m Model) renderHelp() string {
	lines := []string{
		m.styles.title.Render("keys"),
		"",
		"tab / shift+tab   select parameter",
		"up / down (k/j)   coarse adjust",
		"right / left (l/h) fine adjust",
		"r                 restore starting values",
		"t                 toggle dark/light theme",
		"?                 this help",
		"q                 quit",
		"",
		m.styles.label.Render("steps"),
	}
	for _, n := range m.names {
		s := m.steps[n]
		lines = append(lines, fmt.Sprintf("%-11s coarse %g  fine %g", n, s.Coarse, s.Fine))
	}
	lines = append(lines, "", m.styles.help.Render("press any key to close"))
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

// Run starts the console and blocks until the operator quits.
func Run(src Source, theme string) error {
	p := tea.NewProgram(NewModel(src).WithTheme(theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
