package physics

import "github.com/go-gl/mathgl/mgl32"

// ValidDirection reports whether dir is long enough to define a ray.
func ValidDirection(dir mgl32.Vec3) bool {
	return dir.Len() > MinLength
}

// Pick returns the non-fixed particle closest to the ray origin+dir*t, t >= 0,
// whose perpendicular distance is strictly below maxDistance. Ties keep the
// lowest index. t is measured along the normalised direction.
func Pick(positions []mgl32.Vec3, fixed []bool, origin, dir mgl32.Vec3, maxDistance float32) (index int, t float32, ok bool) {
	if !ValidDirection(dir) {
		return -1, 0, false
	}
	dir = dir.Normalize()

	index = -1
	best := maxDistance
	for i, p := range positions {
		if fixed[i] {
			continue
		}
		along := p.Sub(origin).Dot(dir)
		if along < 0 {
			continue
		}
		closest := origin.Add(dir.Mul(along))
		if dist := p.Sub(closest).Len(); dist < best {
			best = dist
			index = i
			t = along
		}
	}
	if index < 0 {
		return -1, 0, false
	}
	return index, t, true
}
