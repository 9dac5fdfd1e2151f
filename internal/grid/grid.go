package grid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
)

// RestHeight is the y coordinate of the flat rest pose.
const RestHeight float32 = 2.35

// Grid is an immutable rows x cols particle lattice.
type Grid struct {
	rows    int
	cols    int
	spacing float32
}

// New validates the dimensions and returns the grid.
func New(rows, cols int, spacing float32) (*Grid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", dynamo.ErrInvalidGrid, rows, cols)
	}
	s := float64(spacing)
	if !(spacing > 0) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("%w: spacing %v", dynamo.ErrInvalidGrid, spacing)
	}
	return &Grid{rows: rows, cols: cols, spacing: spacing}, nil
}

func (g *Grid) Rows() int          { return g.rows }
func (g *Grid) Cols() int          { return g.cols }
func (g *Grid) Spacing() float32   { return g.spacing }
func (g *Grid) Len() int           { return g.rows * g.cols }
func (g *Grid) Index(r, c int) int { return r*g.cols + c }

// Coords is the inverse of Index.
func (g *Grid) Coords(i int) (r, c int) {
	return i / g.cols, i % g.cols
}

// Pinned reports whether particle i is one of the two top corners.
func (g *Grid) Pinned(i int) bool {
	return i == 0 || i == g.cols-1
}

// FixedFlags returns a fresh per-particle pin mask.
func (g *Grid) FixedFlags() []bool {
	fixed := make([]bool, g.Len())
	for i := range fixed {
		fixed[i] = g.Pinned(i)
	}
	return fixed
}

// RestPosition returns the rest-pose position of particle i: a horizontal
// sheet centred on the origin in x and z at RestHeight.
func (g *Grid) RestPosition(i int) mgl32.Vec3 {
	r, c := g.Coords(i)
	halfWidth := 0.5 * float32(g.cols-1) * g.spacing
	halfDepth := 0.5 * float32(g.rows-1) * g.spacing
	return mgl32.Vec3{
		float32(c)*g.spacing - halfWidth,
		RestHeight,
		float32(r)*g.spacing - halfDepth,
	}
}

// RestPose writes the rest pose into dst, which must hold Len() entries.
func (g *Grid) RestPose(dst []mgl32.Vec3) {
	for i := range dst {
		dst[i] = g.RestPosition(i)
	}
}

// RestLength is the rest-pose distance between particles a and b.
func (g *Grid) RestLength(a, b int) float32 {
	return g.RestPosition(a).Sub(g.RestPosition(b)).Len()
}
