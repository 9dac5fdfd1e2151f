package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Params is the mutable parameter set of a solver. Every write is clamped to
// its range; NaN writes are ignored. The zero value is not useful, start
// from DefaultParams.
type Params struct {
	stiffness     float32
	damping       float32
	springDamping float32
	gravity       mgl32.Vec3
	wind          mgl32.Vec3
}

func DefaultParams() Params {
	return Params{
		stiffness:     DefaultStiffness,
		damping:       DefaultDamping,
		springDamping: DefaultSpringDamping,
		gravity:       mgl32.Vec3{0, -BaseGravity * DefaultGravityScale, 0},
		wind:          mgl32.Vec3{DefaultWindStrength, 0, 0},
	}
}

func isNaN(v float32) bool { return math.IsNaN(float64(v)) }

func (p *Params) Stiffness() float32     { return p.stiffness }
func (p *Params) Damping() float32       { return p.damping }
func (p *Params) SpringDamping() float32 { return p.springDamping }
func (p *Params) Gravity() mgl32.Vec3    { return p.gravity }
func (p *Params) Wind() mgl32.Vec3       { return p.wind }

// GravityScale is the gravity magnitude in units of BaseGravity.
func (p *Params) GravityScale() float32 { return -p.gravity.Y() / BaseGravity }

// WindStrength is the x component of the wind force.
func (p *Params) WindStrength() float32 { return p.wind.X() }

func (p *Params) SetStiffness(v float32) {
	if !isNaN(v) {
		p.stiffness = StiffnessRange.Clamp(v)
	}
}

func (p *Params) SetDamping(v float32) {
	if !isNaN(v) {
		p.damping = DampingRange.Clamp(v)
	}
}

func (p *Params) SetSpringDamping(v float32) {
	if !isNaN(v) {
		p.springDamping = SpringDampingRange.Clamp(v)
	}
}

func (p *Params) SetGravityScale(v float32) {
	if !isNaN(v) {
		p.gravity = mgl32.Vec3{0, -BaseGravity * GravityScaleRange.Clamp(v), 0}
	}
}

func (p *Params) SetWindStrength(v float32) {
	if !isNaN(v) {
		p.wind = mgl32.Vec3{WindStrengthRange.Clamp(v), 0, 0}
	}
}

// Uniforms are the values broadcast unchanged to every particle for one
// substep.
type Uniforms struct {
	Dt              float32
	Mass            float32
	Stiffness       float32
	Damping         float32
	SpringDamping   float32
	MaxSpeed        float32
	MaxStretchRatio float32
	GroundY         float32
	Gravity         mgl32.Vec3
	Wind            mgl32.Vec3
	Dragged         int // -1 when nothing is dragged
	DragTarget      mgl32.Vec3
}

// Uniforms snapshots p and the drag state for substeps of length h.
func (p *Params) Uniforms(h float32, d *Drag) Uniforms {
	u := Uniforms{
		Dt:              h,
		Mass:            Mass,
		Stiffness:       p.stiffness,
		Damping:         p.damping,
		SpringDamping:   p.springDamping,
		MaxSpeed:        MaxSpeed,
		MaxStretchRatio: MaxStretchRatio,
		GroundY:         GroundY,
		Gravity:         p.gravity,
		Wind:            p.wind,
		Dragged:         -1,
	}
	if d != nil && d.Active() {
		u.Dragged = d.Index()
		u.DragTarget = d.Target()
	}
	return u
}

// Locked reports whether particle i is excluded from integration and strain
// correction.
func (u *Uniforms) Locked(i int, fixed []bool) bool {
	return fixed[i] || i == u.Dragged
}
