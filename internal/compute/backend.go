package compute

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

// Backend runs the cloth kernel over double-buffered particle state.
type Backend interface {
	Name() string
	Available() bool
	// Init sizes the buffers for g and builds the kernel. Failures wrap
	// dynamo.ErrBackendUnavailable or dynamo.ErrKernelInit.
	Init(g *grid.Grid) error
	// Upload replaces the state in both buffer sets and resets the swap.
	Upload(pos, vel []mgl32.Vec3)
	// Dispatch runs one substep with u broadcast to every particle and
	// returns once the substep has fully completed.
	Dispatch(u physics.Uniforms)
	// ReadBack copies the latest state to host memory.
	ReadBack(pos, vel []mgl32.Vec3)
	Cleanup()
}

// Names lists the names accepted by Lookup.
func Names() []string {
	return []string{"auto", "cpu", "opengl"}
}

// Lookup returns a fresh backend by name. "auto" and the empty name pick the
// best available backend.
func Lookup(name string) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), nil
	case "cpu":
		return NewCPUBackend(0), nil
	case "opengl", "gl":
		return NewOpenGLBackend(), nil
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownBackend, name)
}

// AutoSelectBackend prefers OpenGL when it was compiled in, else the CPU.
func AutoSelectBackend() Backend {
	gl := NewOpenGLBackend()
	if gl.Available() {
		return gl
	}
	return NewCPUBackend(0)
}
