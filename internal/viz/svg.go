package viz

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/clothlab/internal/dynamo"
)

// WriteSVG draws the structural mesh of s through cam as a width x height
// SVG, with pins and the dragged particle marked in the theme accent.
func WriteSVG(w io.Writer, s dynamo.Solver, cam *Camera, width, height int, theme Theme) error {
	springs, fixed := topology(s)
	pos := s.Positions()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="%s" stroke-width="1">
`, width, height, width, height, string(theme.Cloth))

	for _, sp := range springs {
		x0, y0, _ := cam.project(pos[sp.A], width, height)
		x1, y1, _ := cam.project(pos[sp.B], width, height)
		fmt.Fprintf(bw, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x0, y0, x1, y1)
	}

	fmt.Fprintf(bw, "</g>\n<g fill=\"%s\">\n", string(theme.Accent))
	marker := func(i int) {
		x, y, _ := cam.project(pos[i], width, height)
		fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\"/>\n", x, y)
	}
	for i, f := range fixed {
		if f {
			marker(i)
		}
	}
	if idx, ok := s.DraggedIndex(); ok {
		marker(idx)
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// SVGObserver writes the last frame of a run as SVG when closed.
type SVGObserver struct {
	out    io.Writer
	last   dynamo.Solver
	Camera *Camera
	Theme  Theme
	Width  int
	Height int
}

func NewSVGObserver(out io.Writer) *SVGObserver {
	return &SVGObserver{out: out, Camera: NewCamera(), Theme: GetTheme(""), Width: 800, Height: 600}
}

func (o *SVGObserver) OnFrame(frame int, t float64, s dynamo.Solver) { o.last = s }

// Flush writes the latest observed frame. It is a no-op before any frame.
func (o *SVGObserver) Flush() error {
	if o.last == nil {
		return nil
	}
	return WriteSVG(o.out, o.last, o.Camera, o.Width, o.Height, o.Theme)
}
