package integrators

import (
	"errors"
	"fmt"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

var _ dynamo.Solver = (*Parallel)(nil)

// Parallel runs each substep as a data-parallel kernel on a compute backend
// and reads positions and velocities back after every Step.
type Parallel struct {
	cloth
	backend compute.Backend
}

// NewParallel builds the solver on backend; nil selects the CPU backend.
// Backend failures are returned as *dynamo.BackendError.
func NewParallel(rows, cols int, spacing float32, backend compute.Backend) (*Parallel, error) {
	g, err := grid.New(rows, cols, spacing)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		backend = compute.NewCPUBackend(0)
	}
	if !backend.Available() {
		return nil, &dynamo.BackendError{Backend: backend.Name(), Op: "init", Wrapped: dynamo.ErrBackendUnavailable}
	}
	if err := backend.Init(g); err != nil {
		backend.Cleanup()
		if !errors.Is(err, dynamo.ErrBackendUnavailable) && !errors.Is(err, dynamo.ErrKernelInit) {
			err = fmt.Errorf("%w: %v", dynamo.ErrKernelInit, err)
		}
		return nil, &dynamo.BackendError{Backend: backend.Name(), Op: "init", Wrapped: err}
	}

	p := &Parallel{cloth: newCloth(g), backend: backend}
	p.Reset()

	dynamo.Logger().Info("parallel integrator ready", "backend", backend.Name(), "rows", rows, "cols", cols)
	return p, nil
}

// Backend returns the name of the backend running the kernel.
func (p *Parallel) Backend() string {
	return p.backend.Name()
}

func (p *Parallel) Reset() {
	p.restore()
	p.backend.Upload(p.positions, p.velocities)
}

func (p *Parallel) Step(dt float32) {
	n, h, ok := physics.Substeps(dt)
	if !ok {
		return
	}
	u := p.Params.Uniforms(h, &p.drag)

	for k := 0; k < n; k++ {
		p.backend.Dispatch(u)
	}
	p.backend.ReadBack(p.positions, p.velocities)

	if p.diverged() {
		dynamo.Logger().Warn("non-finite cloth state, resetting", "integrator", "parallel", "backend", p.backend.Name(), "dt", dt)
		p.Reset()
	}
}

// Close releases the backend resources.
func (p *Parallel) Close() error {
	p.backend.Cleanup()
	return nil
}
