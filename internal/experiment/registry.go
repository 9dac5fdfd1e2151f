package experiment

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/integrators"
	"github.com/san-kum/clothlab/internal/metrics"
)

const (
	Sequential = "sequential"
	Parallel   = "parallel"
)

// Factory builds a solver from a validated configuration. The returned
// solver has the configured parameters applied.
type Factory func(cfg *config.Config) (dynamo.Solver, error)

type Registry struct {
	solvers map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{solvers: make(map[string]Factory)}

	r.solvers[Sequential] = func(cfg *config.Config) (dynamo.Solver, error) {
		return integrators.NewSequential(cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.Spacing)
	}
	r.solvers[Parallel] = func(cfg *config.Config) (dynamo.Solver, error) {
		return NewParallel(cfg)
	}

	return r
}

// Register adds or replaces a solver factory.
func (r *Registry) Register(name string, f Factory) {
	r.solvers[name] = f
}

func (r *Registry) Build(name string, cfg *config.Config) (dynamo.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", dynamo.ErrUnknownSolver, name, r.ListSolvers())
	}
	s, err := fn(cfg)
	if err != nil {
		return nil, err
	}
	cfg.ApplyParams(s)
	return s, nil
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(g *grid.Grid) []dynamo.Metric {
	return metrics.Standard(g)
}

// NewParallel builds the parallel integrator on the configured backend.
// When a non-CPU backend cannot start, it warns and falls back to the CPU
// backend; a CPU failure is returned as is.
func NewParallel(cfg *config.Config) (*integrators.Parallel, error) {
	backend, err := compute.Lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}

	p, err := integrators.NewParallel(cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.Spacing, backend)
	if err == nil {
		return p, nil
	}

	var be *dynamo.BackendError
	if !errors.As(err, &be) || backend.Name() == "cpu" {
		return nil, err
	}

	dynamo.Logger().Warn("parallel backend failed, falling back to cpu", "backend", be.Backend, "err", be.Wrapped)
	return integrators.NewParallel(cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.Spacing, compute.NewCPUBackend(0))
}

// BackendName reports the backend behind s, or "" for host-only solvers.
func BackendName(s dynamo.Solver) string {
	if p, ok := s.(interface{ Backend() string }); ok {
		return p.Backend()
	}
	return ""
}

// Close releases solver resources when the solver holds any.
func Close(solvers ...dynamo.Solver) {
	for _, s := range solvers {
		if c, ok := s.(io.Closer); ok {
			c.Close()
		}
	}
}
