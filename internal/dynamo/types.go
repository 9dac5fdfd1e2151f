package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Solver is the surface shared by the sequential and parallel integrators.
// Callers hold a Solver and swap implementations freely.
type Solver interface {
	// Step advances the simulation by dt seconds. Non-positive dt is a no-op.
	Step(dt float32)
	// Reset restores the rest pose, default parameters and clears any drag.
	Reset()
	// Positions returns the current particle positions in row-major order.
	// The slice is owned by the solver and valid until the next Step or Reset.
	Positions() []mgl32.Vec3

	Rows() int
	Cols() int

	Stiffness() float32
	SetStiffness(v float32)
	Damping() float32
	SetDamping(v float32)
	SpringDamping() float32
	SetSpringDamping(v float32)
	GravityScale() float32
	SetGravityScale(v float32)
	WindStrength() float32
	SetWindStrength(v float32)

	BeginDrag(origin, dir mgl32.Vec3, maxDistance float32) bool
	UpdateDrag(target mgl32.Vec3)
	UpdateDragFromRay(origin, dir mgl32.Vec3)
	EndDrag()
	IsDragging() bool
	DraggedIndex() (int, bool)
}

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(s Solver, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every frame of a run.
type Observer interface {
	OnFrame(frame int, t float64, s Solver)
}

// Finite reports whether every component of every vector is finite.
func Finite(vs []mgl32.Vec3) bool {
	for _, v := range vs {
		for _, c := range v {
			f := float64(c)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return false
			}
		}
	}
	return true
}

// CopyPositions copies the solver positions into dst. A dst whose length
// differs from rows*cols is rejected and left untouched.
func CopyPositions(s Solver, dst []mgl32.Vec3) error {
	n := s.Rows() * s.Cols()
	if len(dst) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrBufferSize, len(dst), n)
	}
	copy(dst, s.Positions())
	return nil
}
