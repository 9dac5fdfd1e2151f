package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/grid"
)

const (
	defaultExtent = 3.0
	rayBackoff    = 50
)

// Camera is an orthographic orbit camera. Yaw turns about the world Y axis
// and Pitch tilts the view down; zero for both looks along -Z.
type Camera struct {
	Center     mgl32.Vec3
	Yaw, Pitch float32
	// Extent is the world height visible at zoom 1.
	Extent float32
	Zoom   float32
}

func NewCamera() *Camera {
	return &Camera{
		Center: mgl32.Vec3{0, grid.RestHeight - 1.1, 0},
		Pitch:  0.35,
		Extent: defaultExtent,
		Zoom:   1,
	}
}

func (c *Camera) Orbit(dyaw, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, -1.5, 1.5)
}

func (c *Camera) ZoomIn()  { c.Zoom = min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = max(0.1, c.Zoom/1.2) }

// Basis returns the view direction and the screen right and up axes.
func (c *Camera) Basis() (forward, right, up mgl32.Vec3) {
	sy, cy := float32(math.Sin(float64(c.Yaw))), float32(math.Cos(float64(c.Yaw)))
	sp, cp := float32(math.Sin(float64(c.Pitch))), float32(math.Cos(float64(c.Pitch)))
	forward = mgl32.Vec3{-sy * cp, -sp, -cy * cp}
	right = mgl32.Vec3{cy, 0, -sy}
	up = right.Cross(forward)
	return forward, right, up
}

// scale is dots per world unit on a w x h dot surface.
func (c *Camera) scale(w, h int) float32 {
	extent := c.Extent
	if !(extent > 0) {
		extent = defaultExtent
	}
	return c.Zoom * float32(min(w, h)) / extent
}

// Project maps a world point to dot coordinates on a w x h surface. depth
// grows away from the viewer; ok is false when the dot falls outside.
func (c *Camera) Project(p mgl32.Vec3, w, h int) (x, y int, depth float32, ok bool) {
	fx, fy, depth := c.project(p, w, h)
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, depth, x >= 0 && x < w && y >= 0 && y < h
}

func (c *Camera) project(p mgl32.Vec3, w, h int) (fx, fy float64, depth float32) {
	forward, right, up := c.Basis()
	d := p.Sub(c.Center)
	s := c.scale(w, h)

	fx = float64(w)/2 + float64(d.Dot(right)*s)
	fy = float64(h)/2 - float64(d.Dot(up)*s)
	return fx, fy, d.Dot(forward)
}

// Ray returns the world ray through the centre of dot (x, y). The origin is
// backed off along the view direction so the whole scene lies ahead of it.
func (c *Camera) Ray(x, y, w, h int) (origin, dir mgl32.Vec3) {
	forward, right, up := c.Basis()
	s := c.scale(w, h)

	u := (float32(x) + 0.5 - float32(w)/2) / s
	v := (float32(h)/2 - float32(y) - 0.5) / s
	onPlane := c.Center.Add(right.Mul(u)).Add(up.Mul(v))
	return onPlane.Sub(forward.Mul(rayBackoff)), forward
}

// PickRadius converts a radius in dots to world units.
func (c *Camera) PickRadius(dots, w, h int) float32 {
	return float32(dots) / c.scale(w, h)
}
