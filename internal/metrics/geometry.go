package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/grid"
)

// RMSE is the root mean squared distance between corresponding points.
// Mismatched or empty inputs yield NaN.
func RMSE(a, b []mgl32.Vec3) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range a {
		d := a[i].Sub(b[i])
		sum += float64(d.Dot(d))
	}
	return math.Sqrt(sum / float64(len(a)))
}

// MaxStretch is the largest length/rest ratio over springs.
func MaxStretch(positions []mgl32.Vec3, springs []grid.Spring) float64 {
	worst := 0.0
	for _, s := range springs {
		l := float64(positions[s.A].Sub(positions[s.B]).Len())
		if r := l / float64(s.Rest); r > worst {
			worst = r
		}
	}
	return worst
}

// CenterOfMass averages the positions in float64.
func CenterOfMass(positions []mgl32.Vec3) [3]float64 {
	var c [3]float64
	if len(positions) == 0 {
		return c
	}
	for _, p := range positions {
		c[0] += float64(p[0])
		c[1] += float64(p[1])
		c[2] += float64(p[2])
	}
	n := float64(len(positions))
	return [3]float64{c[0] / n, c[1] / n, c[2] / n}
}
