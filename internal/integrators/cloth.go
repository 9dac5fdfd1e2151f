package integrators

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

// cloth is the host-side state and collaborator surface shared by both
// integrators.
type cloth struct {
	physics.Params

	grid       *grid.Grid
	fixed      []bool
	drag       physics.Drag
	positions  []mgl32.Vec3
	velocities []mgl32.Vec3
}

func newCloth(g *grid.Grid) cloth {
	return cloth{
		Params:     physics.DefaultParams(),
		grid:       g,
		fixed:      g.FixedFlags(),
		drag:       physics.NewDrag(),
		positions:  make([]mgl32.Vec3, g.Len()),
		velocities: make([]mgl32.Vec3, g.Len()),
	}
}

// restore rebuilds the rest pose with zero velocities and restores defaults.
func (c *cloth) restore() {
	c.Params = physics.DefaultParams()
	c.drag = physics.NewDrag()
	c.grid.RestPose(c.positions)
	clear(c.velocities)
}

func (c *cloth) diverged() bool {
	return !dynamo.Finite(c.positions) || !dynamo.Finite(c.velocities)
}

func (c *cloth) Rows() int                { return c.grid.Rows() }
func (c *cloth) Cols() int                { return c.grid.Cols() }
func (c *cloth) Positions() []mgl32.Vec3  { return c.positions }
func (c *cloth) Velocities() []mgl32.Vec3 { return c.velocities }
func (c *cloth) Grid() *grid.Grid         { return c.grid }

func (c *cloth) BeginDrag(origin, dir mgl32.Vec3, maxDistance float32) bool {
	return c.drag.Begin(c.positions, c.fixed, origin, dir, maxDistance)
}

func (c *cloth) UpdateDrag(target mgl32.Vec3)             { c.drag.Update(target) }
func (c *cloth) UpdateDragFromRay(origin, dir mgl32.Vec3) { c.drag.UpdateFromRay(origin, dir) }
func (c *cloth) EndDrag()                                 { c.drag.End() }
func (c *cloth) IsDragging() bool                         { return c.drag.Active() }
func (c *cloth) DraggedIndex() (int, bool)                { return c.drag.Selected() }
