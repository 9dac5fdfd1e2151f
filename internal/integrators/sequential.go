package integrators

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

var _ dynamo.Solver = (*Sequential)(nil)

// Sequential integrates the cloth one spring and one particle at a time.
type Sequential struct {
	cloth
	springs []grid.Spring
	forces  []mgl32.Vec3
}

func NewSequential(rows, cols int, spacing float32) (*Sequential, error) {
	g, err := grid.New(rows, cols, spacing)
	if err != nil {
		return nil, err
	}
	s := &Sequential{
		cloth:   newCloth(g),
		springs: g.Springs(),
		forces:  make([]mgl32.Vec3, g.Len()),
	}
	s.Reset()
	return s, nil
}

func (s *Sequential) Reset() {
	s.restore()
}

func (s *Sequential) Step(dt float32) {
	n, h, ok := physics.Substeps(dt)
	if !ok {
		return
	}
	u := s.Params.Uniforms(h, &s.drag)

	for k := 0; k < n; k++ {
		s.integrate(&u)
		s.satisfyStrain(&u)
	}

	if s.diverged() {
		dynamo.Logger().Warn("non-finite cloth state, resetting", "integrator", "sequential", "dt", dt)
		s.Reset()
	}
}

func (s *Sequential) integrate(u *physics.Uniforms) {
	weight := u.Gravity.Mul(u.Mass)
	for i := range s.forces {
		s.forces[i] = weight
	}

	pos, vel := s.positions, s.velocities
	for _, sp := range s.springs {
		f, ok := physics.SpringForce(pos[sp.A], pos[sp.B], vel[sp.A], vel[sp.B], sp.Rest, u.Stiffness, u.SpringDamping)
		if !ok {
			continue
		}
		s.forces[sp.A] = s.forces[sp.A].Add(f)
		s.forces[sp.B] = s.forces[sp.B].Sub(f)
	}

	for i := range pos {
		if s.fixed[i] {
			vel[i] = mgl32.Vec3{}
			continue
		}
		if i == u.Dragged {
			pos[i] = u.DragTarget
			vel[i] = mgl32.Vec3{}
			continue
		}
		pos[i], vel[i] = physics.Advance(pos[i], vel[i], s.forces[i], u)
	}
}

func (s *Sequential) satisfyStrain(u *physics.Uniforms) {
	for _, sp := range s.springs {
		physics.ProjectSpring(s.positions, sp.A, sp.B, sp.Rest, u.MaxStretchRatio,
			u.Locked(sp.A, s.fixed), u.Locked(sp.B, s.fixed))
	}

	if u.Dragged >= 0 {
		s.positions[u.Dragged] = u.DragTarget
		s.velocities[u.Dragged] = mgl32.Vec3{}
	}
}
