package physics

import "github.com/go-gl/mathgl/mgl32"

func div(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0] / s, v[1] / s, v[2] / s}
}

// SpringForce returns the force on endpoint a of a spring between a and b:
// Hooke's law along the spring plus damping of the relative velocity along
// it. The force on b is the negation. ok is false for a degenerate spring.
func SpringForce(pa, pb, va, vb mgl32.Vec3, rest, stiffness, damping float32) (f mgl32.Vec3, ok bool) {
	delta := pa.Sub(pb)
	length := delta.Len()
	if length <= MinLength {
		return mgl32.Vec3{}, false
	}

	dir := div(delta, length)
	stretch := length - rest
	relVel := va.Sub(vb)
	dampingForce := relVel.Dot(dir) * damping
	return dir.Mul(-stiffness*stretch - dampingForce), true
}

// Advance applies wind and linear damping to the accumulated force of a free
// particle and performs one semi-implicit Euler update followed by the speed
// clamp and the ground clamp.
func Advance(pos, vel, force mgl32.Vec3, u *Uniforms) (mgl32.Vec3, mgl32.Vec3) {
	force = force.Add(u.Wind)
	force = force.Add(vel.Mul(-u.Damping))

	acc := div(force, u.Mass)
	vel = vel.Add(acc.Mul(u.Dt))

	if speed := vel.Len(); speed > u.MaxSpeed {
		vel = vel.Mul(u.MaxSpeed / speed)
	}

	pos = pos.Add(vel.Mul(u.Dt))

	if pos[1] < u.GroundY {
		pos[1] = u.GroundY
		vel[1] *= Restitution
	}
	return pos, vel
}

// ProjectSpring pulls a spring stretched beyond rest*ratio back to that
// length. The correction is split evenly between two free endpoints, applied
// wholly to the free one when the other is locked, and skipped when both are
// locked or the spring is degenerate.
func ProjectSpring(pos []mgl32.Vec3, a, b int, rest, ratio float32, lockA, lockB bool) {
	delta := pos[b].Sub(pos[a])
	length := delta.Len()
	if length <= MinLength {
		return
	}

	maxLength := rest * ratio
	if length <= maxLength {
		return
	}

	dir := div(delta, length)
	correction := dir.Mul(length - maxLength)

	switch {
	case !lockA && !lockB:
		pos[a] = pos[a].Add(correction.Mul(0.5))
		pos[b] = pos[b].Sub(correction.Mul(0.5))
	case lockA && !lockB:
		pos[b] = pos[b].Sub(correction)
	case !lockA && lockB:
		pos[a] = pos[a].Add(correction)
	}
}
