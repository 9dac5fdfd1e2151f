package viz

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/integrators"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) {
		t.Error("dots not set")
	}
	if c.IsSet(1, 0) {
		t.Error("unexpected dot")
	}
	if got := c.String(); got != "⠁⢀\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestCanvasDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
	}{
		{"horizontal", 0, 2, 9, 2},
		{"vertical", 3, 7, 3, 0},
		{"diagonal", 0, 0, 7, 7},
		{"steep", 1, 0, 4, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(8, 4)
			c.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1)
			if !c.IsSet(tt.x0, tt.y0) || !c.IsSet(tt.x1, tt.y1) {
				t.Error("endpoints not drawn")
			}
		})
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Blob(2, 2, 1)
	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Errorf("canvas not cleared: %q", c.String())
	}
}

func TestCameraRayHitsProjectedPoint(t *testing.T) {
	cameras := map[string]*Camera{
		"default": NewCamera(),
		"orbited": {Center: mgl32.Vec3{0, 1, 0}, Yaw: 0.7, Pitch: -0.3, Extent: 3, Zoom: 2},
	}
	p := mgl32.Vec3{0.3, 1.4, -0.2}
	const w, h = 120, 96

	for name, cam := range cameras {
		t.Run(name, func(t *testing.T) {
			x, y, _, ok := cam.Project(p, w, h)
			if !ok {
				t.Fatalf("point projected off screen at (%d, %d)", x, y)
			}
			origin, dir := cam.Ray(x, y, w, h)

			toP := p.Sub(origin)
			along := toP.Dot(dir)
			if along <= 0 {
				t.Fatal("point behind the ray origin")
			}
			miss := toP.Sub(dir.Mul(along)).Len()
			if limit := cam.PickRadius(1, w, h); miss > limit {
				t.Errorf("ray misses by %v, more than one dot (%v)", miss, limit)
			}
		})
	}
}

func TestCameraZoomBounds(t *testing.T) {
	cam := NewCamera()
	for range 50 {
		cam.ZoomIn()
	}
	if cam.Zoom > 10 {
		t.Errorf("zoom = %v", cam.Zoom)
	}
	for range 100 {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.1 {
		t.Errorf("zoom = %v", cam.Zoom)
	}
}

func newSolvers(t *testing.T) []dynamo.Solver {
	t.Helper()
	var out []dynamo.Solver
	for range 2 {
		s, err := integrators.NewSequential(6, 6, 0.4)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, s)
	}
	return out
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTickAdvancesInLockstep(t *testing.T) {
	m := NewModel(Options{Solvers: newSolvers(t), Names: []string{"a", "b"}})

	for range 10 {
		next, cmd := m.Update(TickMsg{})
		if cmd == nil {
			t.Fatal("tick not rescheduled")
		}
		m = next.(Model)
	}
	if m.frame != 10 {
		t.Errorf("frame = %d", m.frame)
	}
	if len(m.rmse) != 10 || m.rmse[9] != 0 {
		t.Errorf("identical solvers should agree exactly, rmse %v", m.rmse)
	}

	m = press(m, " ")
	next, _ := m.Update(TickMsg{})
	if next.(Model).frame != 10 {
		t.Error("paused model advanced on tick")
	}
	m = press(m, "n")
	if m.frame != 11 {
		t.Errorf("single step: frame = %d", m.frame)
	}

	m = press(m, "r")
	if m.frame != 0 || len(m.rmse) != 0 {
		t.Error("reset did not clear history")
	}
}

func TestModelAdjustsEverySolver(t *testing.T) {
	solvers := newSolvers(t)
	m := NewModel(Options{Solvers: solvers})

	for m.params[m.selected] != dynamo.ParamWindStrength {
		m = press(m, "tab")
	}
	m = press(m, ".")
	m = press(m, ".")
	for i, s := range solvers {
		if s.WindStrength() != 1 {
			t.Errorf("solver %d wind = %v, want 1", i, s.WindStrength())
		}
	}
	m = press(m, ",")
	if solvers[1].WindStrength() != 0.5 {
		t.Errorf("wind = %v after decrease", solvers[1].WindStrength())
	}
}

func TestModelDragUnderCursor(t *testing.T) {
	solvers := newSolvers(t)
	m := NewModel(Options{Solvers: solvers})

	const target = 3*6 + 3
	w, h := m.canvas.Dots()
	x, y, _, ok := m.camera.Project(solvers[0].Positions()[target], w, h)
	if !ok {
		t.Fatal("particle not on screen")
	}
	m.cursorX, m.cursorY = x, y

	m = press(m, "d")
	if !m.dragging {
		t.Fatal("drag did not start")
	}
	for i, s := range solvers {
		if idx, ok := s.DraggedIndex(); !ok || idx != target {
			t.Errorf("solver %d dragging %d, want %d", i, idx, target)
		}
	}

	m.moveCursor(0, -6)
	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.rmse[len(m.rmse)-1] != 0 {
		t.Error("dragged solvers diverged")
	}

	m = press(m, "d")
	if m.dragging || solvers[0].IsDragging() {
		t.Error("drag not released")
	}
}

func TestModelDragMissesEmptySpace(t *testing.T) {
	m := NewModel(Options{Solvers: newSolvers(t)})
	m.cursorX, m.cursorY = 0, 0

	m = press(m, "d")
	if m.dragging {
		t.Error("drag started with nothing under the cursor")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(Options{Solvers: newSolvers(t), Names: []string{"sequential", "parallel"}, Backends: []string{"", "cpu"}})
	m = press(m, "n")
	m = press(m, " ")
	m = press(m, "n")

	out := m.View()
	for _, want := range []string{"CLOTHLAB", "PAUSED", "parallel (cpu)", "RMSE", dynamo.ParamStiffness} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, "?")
	if !strings.Contains(m.View(), "orbit the camera") {
		t.Error("help overlay not shown")
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	if len(names) == 0 {
		t.Fatal("no themes")
	}
	th := GetTheme(names[0])
	seen := map[string]bool{}
	for range names {
		seen[th.Name] = true
		th = nextTheme(th)
	}
	if len(seen) != len(names) {
		t.Errorf("cycling visited %d of %d themes", len(seen), len(names))
	}
	if GetTheme("nope").Name == "" {
		t.Error("unknown theme should fall back to a default")
	}
}

func TestLiveRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 1)
	s := newSolvers(t)[0]

	r.Start()
	r.OnFrame(1, 1.0/60, s)
	r.Stop()

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Error("cursor escapes missing")
	}
	if !strings.Contains(out, "frame 1") {
		t.Errorf("status line missing: %q", out)
	}

	buf.Reset()
	r.OnFrame(2, 2.0/60, s)
	if buf.Len() != 0 {
		t.Error("renderer not throttled")
	}
}

func TestWriteSVG(t *testing.T) {
	s := newSolvers(t)[0]
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, NewCamera(), 400, 300, GetTheme("ocean")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	// 6x6 grid: 60 structural springs, 2 pins.
	if n := strings.Count(out, "<line "); n != 60 {
		t.Errorf("lines = %d, want 60", n)
	}
	if n := strings.Count(out, "<circle "); n != 2 {
		t.Errorf("markers = %d, want 2", n)
	}
}

func TestSVGObserver(t *testing.T) {
	var buf bytes.Buffer
	o := NewSVGObserver(&buf)
	if err := o.Flush(); err != nil || buf.Len() != 0 {
		t.Fatal("flush before any frame should write nothing")
	}
	o.OnFrame(0, 0, newSolvers(t)[0])
	if err := o.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("no svg written")
	}
}
