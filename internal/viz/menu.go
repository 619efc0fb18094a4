package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

var presetInfo = map[string]string{
	"binary":       "equal-mass circular binary",
	"eccentric":    "eccentric two-body orbit",
	"figure8":      "Chenciner-Montgomery three-body choreography",
	"solar_system": "sun, planets and pluto",
	"ring":         "planetesimal ring around a star",
	"random":       "softened cold cluster",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var menuParams = []string{"integrator", "t_max", "min_dt", "dt_output", "softening"}

// Menu picks a preset, lets the user tune its run parameters and then
// hands over to the live view.
type Menu struct {
	state       int
	cursor      int
	presets     []string
	integrators []string
	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	err         error
	live        Model
}

func NewMenu() Menu {
	return Menu{
		presets:     config.ListPresets(),
		integrators: experiment.NewRegistry().ListIntegrators(),
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "m" {
			m.state = stateConfig
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(k)
		case stateConfig:
			return m.configKey(k)
		}
	}
	return m, nil
}

func (m Menu) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Menu) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err != nil {
				m.err = err
			} else {
				m.setParam(menuParams[m.paramCursor], v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(menuParams)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.cycleIntegrator(-1)
	case "right", "l":
		m.cycleIntegrator(1)
	case "enter", " ":
		if name := menuParams[m.paramCursor]; name != "integrator" {
			m.editing, m.editBuf = true, strconv.FormatFloat(m.param(name), 'g', -1, 64)
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *Menu) cycleIntegrator(d int) {
	if menuParams[m.paramCursor] != "integrator" || len(m.integrators) == 0 {
		return
	}
	idx := 0
	for i, name := range m.integrators {
		if name == m.cfg.Integrator {
			idx = i
		}
	}
	idx = (idx + d + len(m.integrators)) % len(m.integrators)
	m.cfg.Integrator = m.integrators[idx]
}

func (m Menu) param(name string) float64 {
	switch name {
	case "t_max":
		return m.cfg.TMax
	case "min_dt":
		return m.cfg.MinDt
	case "dt_output":
		return m.cfg.DtOutput
	case "softening":
		return m.cfg.Softening
	}
	return 0
}

func (m *Menu) setParam(name string, v float64) {
	switch name {
	case "t_max":
		m.cfg.TMax = v
	case "min_dt":
		m.cfg.MinDt = v
	case "dt_output":
		m.cfg.DtOutput = v
	case "softening":
		m.cfg.Softening = v
	}
}

func (m Menu) start() (tea.Model, tea.Cmd) {
	exp, err := experiment.New(m.cfg.Clone())
	if err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(exp)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state, m.err = live, stateSim, nil
	return m, live.Init()
}

func (m Menu) View() string {
	switch m.state {
	case stateConfig:
		return m.configView()
	case stateSim:
		return m.live.View() + "\n" + KeyHint.Render("m back to parameters")
	}
	return m.menuView()
}

func (m Menu) menuView() string {
	var b strings.Builder
	b.WriteString(titleStyle(Themes[0]).Render("gravsim") + Subtle.Render("  choose a system") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-14s %s", name, Subtle.Render(presetInfo[name]))
		if i == m.cursor {
			b.WriteString(MetricValue.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + KeyHint.Render("↑/↓ select · enter configure · q quit"))
	return b.String()
}

func (m Menu) configView() string {
	var b strings.Builder
	b.WriteString(titleStyle(Themes[0]).Render(m.cfg.Name) + "\n\n")
	for i, name := range menuParams {
		var value string
		switch {
		case name == "integrator":
			value = "◂ " + m.cfg.Integrator + " ▸"
		case m.editing && i == m.paramCursor:
			value = m.editBuf + "█"
		default:
			value = strconv.FormatFloat(m.param(name), 'g', 6, 64)
		}
		row := MetricLabel.Render(fmt.Sprintf("%-12s", name)) + MetricValue.Render(value)
		if i == m.paramCursor {
			row = lipgloss.NewStyle().Bold(true).Render("▸ ") + row
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + statusStyle(Themes[0].Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("enter edit · ←/→ integrator · s start · esc back"))
	return b.String()
}

// RunMenu opens the interactive preset picker.
func RunMenu() error {
	_, err := tea.NewProgram(NewMenu(), tea.WithAltScreen()).Run()
	return err
}
