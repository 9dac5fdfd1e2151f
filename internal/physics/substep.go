package physics

import "math"

const (
	// MaxFrameDt caps the time advanced by one Step.
	MaxFrameDt float32 = 1.0 / 30
	// MaxSubstepDt caps the length of one substep.
	MaxSubstepDt float32 = 1.0 / 240
)

// Substeps plans one Step of length dt: dt is clamped to MaxFrameDt and
// split into n equal substeps of length h no longer than MaxSubstepDt.
// ok is false for dt <= 0 or NaN, in which case the step is a no-op.
func Substeps(dt float32) (n int, h float32, ok bool) {
	if !(dt > 0) {
		return 0, 0, false
	}
	dt = min(dt, MaxFrameDt)
	n = max(1, int(math.Ceil(float64(dt/MaxSubstepDt))))
	return n, dt / float32(n), true
}
