package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	defaultCanvasW = 60
	defaultCanvasH = 24
	trailLength    = 120
	historyLength  = 200
	frameRate      = 30
)

// TickMsg advances the live view by one frame.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one experiment. Each frame advances the
// simulator by StepsPerFrame adaptive steps and redraws the bodies with
// their recent trails.
type Model struct {
	exp    *experiment.Experiment
	camera *Camera
	canvas *Canvas
	theme  Theme

	StepsPerFrame int
	GIFPath       string

	running  bool
	showHelp bool
	err      error
	status   string

	energy0 float64
	drift   []float64
	trails  [][]r3.Vec

	recorder *Recorder
	width    int
	height   int
}

// NewModel starts exp and returns a view positioned to hold its bodies.
func NewModel(exp *experiment.Experiment) (Model, error) {
	m := Model{
		exp:           exp,
		canvas:        NewCanvas(defaultCanvasW, defaultCanvasH),
		theme:         Themes[0],
		StepsPerFrame: 10,
		GIFPath:       "gravsim.gif",
		running:       true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	m.camera = FitCamera(exp.Simulator().Bodies().Pos)
	return m, nil
}

func (m *Model) reset() error {
	if err := m.exp.Start(); err != nil {
		return err
	}
	b := m.exp.Simulator().Bodies()
	m.energy0 = m.exp.Gravity().Energy(b)
	m.drift = m.drift[:0]
	m.trails = make([][]r3.Vec, b.Len())
	m.err = nil
	m.record()
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := max(20, msg.Width-34)
		h := max(8, msg.Height-10)
		m.canvas = NewCanvas(w, h)
		return m, nil

	case TickMsg:
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
		m.running = true
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "c":
		m.camera.Reset()
	case ".", ">":
		m.StepsPerFrame = min(m.StepsPerFrame*2, 10000)
	case ",", "<":
		m.StepsPerFrame = max(m.StepsPerFrame/2, 1)
	case "t":
		m.theme = m.theme.next()
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(m.theme)
		m.status = "recording"
		return
	}
	if err := m.recorder.Save(m.GIFPath); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Frames(), m.GIFPath)
	}
	m.recorder = nil
}

// advance steps the simulator until the frame budget is spent or the run
// leaves the stepping phase.
func (m *Model) advance() {
	s := m.exp.Simulator()
	for i := 0; i < m.StepsPerFrame && s.Phase() == sim.Stepping; i++ {
		if err := s.Advance(); err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	if s.Phase() == sim.Terminated {
		m.running = false
	}
	m.record()
}

func (m *Model) record() {
	b := m.exp.Simulator().Bodies()
	if b == nil {
		return
	}
	for i, p := range b.Pos {
		t := append(m.trails[i], p)
		if len(t) > trailLength {
			t = t[len(t)-trailLength:]
		}
		m.trails[i] = t
	}
	if m.energy0 != 0 {
		e := m.exp.Gravity().Energy(b)
		m.drift = append(m.drift, (e-m.energy0)/math.Abs(m.energy0))
		if len(m.drift) > historyLength {
			m.drift = m.drift[len(m.drift)-historyLength:]
		}
	}
}

func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	pw, ph := c.PixelWidth(), c.PixelHeight()

	for i, trail := range m.trails {
		for j := 1; j < len(trail); j++ {
			x0, y0, _, ok0 := m.camera.Project(trail[j-1], pw, ph)
			x1, y1, _, ok1 := m.camera.Project(trail[j], pw, ph)
			if ok0 && ok1 {
				c.MarkLine(x0, y0, x1, y1, i)
			}
		}
	}

	b := m.exp.Simulator().Bodies()
	if b == nil {
		return
	}
	for i, p := range b.Pos {
		if x, y, _, ok := m.camera.Project(p, pw, ph); ok {
			c.FillDisc(x, y, 1, i)
		}
	}
}

func (m Model) phaseLabel() string {
	switch {
	case m.err != nil:
		return statusStyle(m.theme.Error).Render("ERROR")
	case m.exp.Simulator().Phase() == sim.Terminated:
		return statusStyle(m.theme.Success).Render("DONE")
	case m.running:
		return statusStyle(m.theme.Success).Render("RUNNING")
	}
	return statusStyle(m.theme.Warning).Render("PAUSED")
}

func (m Model) View() string {
	cfg := m.exp.Config()
	s := m.exp.Simulator()

	view := Panel.BorderForeground(m.theme.Muted).Render(
		m.canvas.Render(func(tag int) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(m.theme.BodyColor(tag))
		}))

	var side strings.Builder
	side.WriteString(titleStyle(m.theme).Render("gravsim · "+cfg.Name) + "\n")
	side.WriteString(m.phaseLabel())
	if m.recorder != nil {
		side.WriteString(" " + statusStyle(m.theme.Error).Render("● REC"))
	}
	side.WriteString("\n\n")

	frac := s.Time() / cfg.TMax
	side.WriteString(ProgressBar(frac, 24) + "\n")
	side.WriteString(metric("t", fmt.Sprintf("%.4g / %.4g", s.Time(), cfg.TMax)))
	side.WriteString(metric("steps", fmt.Sprintf("%d", s.Steps())))
	side.WriteString(metric("steps/frame", fmt.Sprintf("%d", m.StepsPerFrame)))
	side.WriteString(metric("integrator", s.Integrator().Name()))
	if n := len(m.drift); n > 0 {
		side.WriteString(metric("ΔE/E", fmt.Sprintf("%+.3e", m.drift[n-1])))
		side.WriteString(Subtle.Render(Sparkline(m.drift, 24)) + "\n")
	}
	side.WriteString("\n" + separator(26) + "\n")

	names := m.exp.Names()
	for i := 0; i < len(names) && i < 12; i++ {
		dot := lipgloss.NewStyle().Foreground(m.theme.BodyColor(i)).Render("●")
		side.WriteString(dot + " " + names[i] + "\n")
	}
	if len(names) > 12 {
		side.WriteString(Subtle.Render(fmt.Sprintf("  +%d more", len(names)-12)) + "\n")
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, view, "  ", side.String())

	if len(m.drift) > 1 {
		graph := asciigraph.Plot(m.drift,
			asciigraph.Height(5),
			asciigraph.Width(defaultCanvasW),
			asciigraph.Caption("relative energy drift"))
		out += "\n" + Subtle.Render(graph)
	}
	if m.err != nil {
		out += "\n" + statusStyle(m.theme.Error).Render(m.err.Error())
	}
	if m.status != "" {
		out += "\n" + Subtle.Render(m.status)
	}
	if m.showHelp {
		out += "\n" + helpText()
	} else {
		out += "\n" + KeyHint.Render("space pause · r reset · ? help · q quit")
	}
	return out
}

func metric(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-12s", label)) + MetricValue.Render(value) + "\n"
}

func helpText() string {
	keys := [][2]string{
		{"space", "pause / resume"},
		{"r", "restart from the initial state"},
		{"+ -", "zoom"},
		{"x y z", "rotate (shift reverses)"},
		{"c", "reset camera"},
		{". ,", "more / fewer steps per frame"},
		{"t", "cycle theme"},
		{"g", "start / stop GIF recording"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(KeyHint.Render(fmt.Sprintf("  %-6s %s", k[0], k[1])) + "\n")
	}
	return b.String()
}

// Run opens the live view of exp in the terminal.
func Run(exp *experiment.Experiment) error {
	m, err := NewModel(exp)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
