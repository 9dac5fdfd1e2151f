package viz

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a dynamo.Observer that redraws the cloth on a plain
// terminal at most frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	canvas    *Canvas
	camera    *Camera
	springs   []grid.Spring
	fixed     []bool
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		canvas:    NewCanvas(defaultWidth, defaultHeight/2),
		camera:    NewCamera(),
	}
}

func (r *LiveRenderer) OnFrame(frame int, t float64, s dynamo.Solver) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	if r.springs == nil {
		r.springs, r.fixed = topology(s)
	}
	r.canvas.Clear()
	drawCloth(r.canvas, r.camera, s, r.springs, r.fixed)

	fmt.Fprint(r.out, clearScreen)
	fmt.Fprint(r.out, r.canvas.String())
	fmt.Fprintf(r.out, "frame %-6d t=%.2fs  k=%.0f  wind=%.1f\n", frame, t, s.Stiffness(), s.WindStrength())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
