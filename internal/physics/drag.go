package physics

import "github.com/go-gl/mathgl/mgl32"

// Drag tracks the single dragged particle. While active, the particle's
// position is overridden by the target on every substep.
type Drag struct {
	index  int
	rayT   float32
	target mgl32.Vec3
}

func NewDrag() Drag {
	return Drag{index: -1}
}

// Begin picks a particle along the ray and starts dragging it. On failure
// the previous drag state is kept.
func (d *Drag) Begin(positions []mgl32.Vec3, fixed []bool, origin, dir mgl32.Vec3, maxDistance float32) bool {
	i, t, ok := Pick(positions, fixed, origin, dir, maxDistance)
	if !ok {
		return false
	}
	d.index = i
	d.rayT = t
	d.target = origin.Add(dir.Normalize().Mul(t))
	return true
}

// Update moves the target. Ignored when not dragging.
func (d *Drag) Update(target mgl32.Vec3) {
	if d.index < 0 {
		return
	}
	d.target = target
}

// UpdateFromRay places the target at the captured depth along a new ray.
// Ignored when not dragging or for a degenerate direction.
func (d *Drag) UpdateFromRay(origin, dir mgl32.Vec3) {
	if d.index < 0 || !ValidDirection(dir) {
		return
	}
	d.target = origin.Add(dir.Normalize().Mul(d.rayT))
}

func (d *Drag) End() {
	d.index = -1
}

func (d *Drag) Active() bool          { return d.index >= 0 }
func (d *Drag) Index() int            { return d.index }
func (d *Drag) Target() mgl32.Vec3    { return d.target }
func (d *Drag) Selected() (int, bool) { return d.index, d.index >= 0 }
