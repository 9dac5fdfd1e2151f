package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/metrics"
)

const (
	defaultWidth    = 60
	defaultHeight   = 24
	historyCapacity = 120
	cursorStep      = 2
	pickDots        = 4
)

// paramSteps is the increment applied by one key press.
var paramSteps = map[string]float32{
	dynamo.ParamStiffness:     25,
	dynamo.ParamDamping:       0.05,
	dynamo.ParamSpringDamping: 0.1,
	dynamo.ParamGravityScale:  0.1,
	dynamo.ParamWindStrength:  0.5,
}

type TickMsg time.Time

// Options configures the live view.
type Options struct {
	// Solvers are stepped in lockstep with identical edits. The first is
	// the reference the others are compared against.
	Solvers []dynamo.Solver
	Names   []string
	// Backends label each solver in the stats panel; optional.
	Backends []string
	Dt       float32
	// PickRadius is in world units; zero derives it from the zoom.
	PickRadius float32
	Tolerance  float64
	Theme      string
	// Width and Height are the canvas size in characters.
	Width, Height int
}

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	opts     Options
	springs  []grid.Spring
	fixed    []bool
	canvas   *Canvas
	camera   *Camera
	theme    Theme
	styles   styles
	running  bool
	showHelp bool
	frame    int
	t        float64
	shown    int
	selected int
	params   []string
	cursorX  int
	cursorY  int
	dragging bool
	stepMs   []float64
	rmse     []float64
}

// NewModel initializes the simulation and visualization state.
func NewModel(opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if !(opts.Dt > 0) {
		opts.Dt = 1.0 / 60
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-2
	}

	m := Model{
		opts:    opts,
		canvas:  NewCanvas(opts.Width, opts.Height),
		camera:  NewCamera(),
		theme:   GetTheme(opts.Theme),
		running: true,
		params:  dynamo.ParamNames(),
		stepMs:  make([]float64, len(opts.Solvers)),
		rmse:    make([]float64, 0, historyCapacity),
	}
	m.styles = newStyles(m.theme)

	w, h := m.canvas.Dots()
	m.cursorX, m.cursorY = w/2, h/2

	if len(opts.Solvers) > 0 {
		m.springs, m.fixed = topology(opts.Solvers[0])
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "n":
		if !m.running {
			m.advance()
		}
	case "r":
		m.reset()
	case "tab":
		m.selected = (m.selected + 1) % len(m.params)
	case "shift+tab":
		m.selected = (m.selected + len(m.params) - 1) % len(m.params)
	case ".", ">":
		m.adjustParam(1)
	case ",", "<":
		m.adjustParam(-1)
	case "left":
		m.moveCursor(-cursorStep, 0)
	case "right":
		m.moveCursor(cursorStep, 0)
	case "up":
		m.moveCursor(0, -cursorStep)
	case "down":
		m.moveCursor(0, cursorStep)
	case "d", "enter":
		m.toggleDrag()
	case "[":
		m.camera.Orbit(-0.1, 0)
	case "]":
		m.camera.Orbit(0.1, 0)
	case "{":
		m.camera.Orbit(0, -0.1)
	case "}":
		m.camera.Orbit(0, 0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "v":
		if len(m.opts.Solvers) > 0 {
			m.shown = (m.shown + 1) % len(m.opts.Solvers)
		}
	case "t":
		m.theme = nextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance steps every solver by one frame.
func (m *Model) advance() {
	for i, s := range m.opts.Solvers {
		start := time.Now()
		s.Step(m.opts.Dt)
		m.stepMs[i] = float64(time.Since(start)) / float64(time.Millisecond)
	}
	m.frame++
	m.t += float64(m.opts.Dt)

	if len(m.opts.Solvers) > 1 {
		e := metrics.RMSE(m.opts.Solvers[0].Positions(), m.opts.Solvers[1].Positions())
		m.rmse = append(m.rmse, e)
		if len(m.rmse) > historyCapacity {
			m.rmse = m.rmse[1:]
		}
	}

	// A divergence reset drops the drag inside the solver.
	if m.dragging && !m.anyDragging() {
		m.dragging = false
	}
}

func (m *Model) anyDragging() bool {
	for _, s := range m.opts.Solvers {
		if s.IsDragging() {
			return true
		}
	}
	return false
}

func (m *Model) reset() {
	for _, s := range m.opts.Solvers {
		s.Reset()
	}
	m.dragging = false
	m.frame = 0
	m.t = 0
	m.rmse = m.rmse[:0]
}

func (m *Model) adjustParam(dir float32) {
	if len(m.opts.Solvers) == 0 {
		return
	}
	name := m.params[m.selected]
	current := dynamo.GetParams(m.opts.Solvers[0])[name]
	next := float32(current) + dir*paramSteps[name]
	for _, s := range m.opts.Solvers {
		_ = dynamo.SetParam(s, name, next)
	}
}

func (m *Model) ray() (origin, dir mgl32.Vec3) {
	w, h := m.canvas.Dots()
	return m.camera.Ray(m.cursorX, m.cursorY, w, h)
}

func (m *Model) pickRadius() float32 {
	if m.opts.PickRadius > 0 {
		return m.opts.PickRadius
	}
	w, h := m.canvas.Dots()
	return m.camera.PickRadius(pickDots, w, h)
}

func (m *Model) moveCursor(dx, dy int) {
	w, h := m.canvas.Dots()
	m.cursorX = min(max(m.cursorX+dx, 0), w-1)
	m.cursorY = min(max(m.cursorY+dy, 0), h-1)

	if m.dragging {
		origin, dir := m.ray()
		for _, s := range m.opts.Solvers {
			s.UpdateDragFromRay(origin, dir)
		}
	}
}

func (m *Model) toggleDrag() {
	if m.dragging {
		for _, s := range m.opts.Solvers {
			s.EndDrag()
		}
		m.dragging = false
		return
	}

	origin, dir := m.ray()
	radius := m.pickRadius()
	for _, s := range m.opts.Solvers {
		if s.BeginDrag(origin, dir, radius) {
			m.dragging = true
		}
	}
}

// Cursor returns the cursor position in canvas dots.
func (m Model) Cursor() (x, y int) { return m.cursorX, m.cursorY }

// draw renders the shown solver into the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	if len(m.opts.Solvers) == 0 {
		return
	}
	drawCloth(m.canvas, m.camera, m.opts.Solvers[m.shown], m.springs, m.fixed)

	for d := 2; d <= 3; d++ {
		m.canvas.Set(m.cursorX-d, m.cursorY)
		m.canvas.Set(m.cursorX+d, m.cursorY)
		m.canvas.Set(m.cursorX, m.cursorY-d)
		m.canvas.Set(m.cursorX, m.cursorY+d)
	}
}

func (m Model) name(i int) string {
	if i < len(m.opts.Names) {
		return m.opts.Names[i]
	}
	return fmt.Sprintf("solver %d", i)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.styles
	canvasView := st.cloth.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render("CLOTHLAB") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(fmt.Sprintf("%s  showing %s\n\n", status, m.name(m.shown)))

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.frame))
	row("Time", fmt.Sprintf("%.2fs", m.t))
	for i := range m.opts.Solvers {
		label := m.name(i)
		if i < len(m.opts.Backends) && m.opts.Backends[i] != "" {
			label += " (" + m.opts.Backends[i] + ")"
		}
		row(label, fmt.Sprintf("%.3f ms", m.stepMs[i]))
	}

	if len(m.rmse) > 0 {
		e := m.rmse[len(m.rmse)-1]
		style := st.good
		if !(e < m.opts.Tolerance) {
			style = st.warn
		}
		s.WriteString(st.label.Render("RMSE") + style.Render(fmt.Sprintf("%.2e", e)) + "\n")
		if len(m.rmse) > 1 {
			chart := asciigraph.Plot(m.rmse, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("RMSE"))
			s.WriteString(st.value.Render(chart) + "\n")
		}
	}

	drag := "-"
	if len(m.opts.Solvers) > 0 {
		if idx, ok := m.opts.Solvers[m.shown].DraggedIndex(); ok {
			drag = fmt.Sprintf("particle %d", idx)
		}
	}
	row("Drag", drag)

	s.WriteString("\nPARAMETERS\n")
	if len(m.opts.Solvers) > 0 {
		values := dynamo.GetParams(m.opts.Solvers[0])
		for i, name := range m.params {
			line := fmt.Sprintf("%-15s %8.2f", name, values[name])
			if i == m.selected {
				s.WriteString(st.active.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + st.value.Render(line) + "\n")
			}
		}
	}
	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset Q:Quit\nTab:Param ,/.:Tune D:Drag ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space      pause / resume
  N          single frame while paused
  R          reset both solvers
  Tab        next parameter (Shift+Tab previous)
  , .        decrease / increase parameter
  Arrows     move the pick cursor
  D, Enter   grab the particle under the cursor / release
  [ ] { }    orbit the camera
  + -        zoom
  V          switch the displayed solver
  T          cycle themes
  Q          quit
`

// Run starts the live view on the terminal.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
