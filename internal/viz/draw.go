package viz

import (
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
)

// topology returns the structural springs and pin flags of the solver's
// grid. Rest lengths are not needed for drawing.
func topology(s dynamo.Solver) ([]grid.Spring, []bool) {
	g, err := grid.New(s.Rows(), s.Cols(), 1)
	if err != nil {
		return nil, nil
	}
	springs := make([]grid.Spring, 0, 2*g.Len())
	for _, sp := range g.Springs() {
		if sp.Kind == grid.Structural {
			springs = append(springs, sp)
		}
	}
	return springs, g.FixedFlags()
}

// drawCloth draws the structural mesh of s with pins and the dragged
// particle marked.
func drawCloth(c *Canvas, cam *Camera, s dynamo.Solver, springs []grid.Spring, fixed []bool) {
	pos := s.Positions()
	w, h := c.Dots()

	for _, sp := range springs {
		x0, y0, _, ok0 := cam.Project(pos[sp.A], w, h)
		x1, y1, _, ok1 := cam.Project(pos[sp.B], w, h)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for i, f := range fixed {
		if f {
			x, y, _, _ := cam.Project(pos[i], w, h)
			c.Blob(x, y, 1)
		}
	}
	if idx, ok := s.DraggedIndex(); ok {
		x, y, _, _ := cam.Project(pos[idx], w, h)
		c.Blob(x, y, 1)
	}
}
