package experiment

import (
	"context"
	"time"

	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/sim"
	"github.com/san-kum/clothlab/internal/storage"
)

// Experiment builds solvers from one configuration and runs them.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Registry() *Registry    { return e.registry }

// Pair builds a sequential and a parallel solver with identical settings.
func (e *Experiment) Pair() (seq, par dynamo.Solver, err error) {
	seq, err = e.registry.Build(Sequential, e.cfg)
	if err != nil {
		return nil, nil, err
	}
	par, err = e.registry.Build(Parallel, e.cfg)
	if err != nil {
		Close(seq)
		return nil, nil, err
	}
	return seq, par, nil
}

// Run drives one solver for the configured frames with the standard
// metrics attached.
func (e *Experiment) Run(ctx context.Context, solver string, script sim.Script, observers ...dynamo.Observer) (*sim.Result, storage.RunMetadata, error) {
	s, err := e.registry.Build(solver, e.cfg)
	if err != nil {
		return nil, storage.RunMetadata{}, err
	}
	defer Close(s)

	meta := e.metadata("run", solver, s)

	simulator := sim.New(s)
	if g, ok := s.(interface{ Grid() *grid.Grid }); ok {
		for _, m := range e.registry.DefaultMetrics(g.Grid()) {
			simulator.AddMetric(m)
		}
	}
	for _, o := range observers {
		simulator.AddObserver(o)
	}

	result, err := simulator.Run(ctx, sim.Config{
		Frames: e.cfg.Run.Frames,
		Dt:     e.cfg.Run.Dt,
		Script: script,
	})
	if result != nil {
		meta.Metrics = result.Metrics
		meta.Frames = result.Frames
	}
	return result, meta, err
}

// Compare drives a sequential and a parallel solver side by side.
func (e *Experiment) Compare(ctx context.Context, script sim.Script) (*sim.CompareResult, storage.RunMetadata, error) {
	seq, par, err := e.Pair()
	if err != nil {
		return nil, storage.RunMetadata{}, err
	}
	defer Close(seq, par)

	meta := e.metadata("compare", "both", par)

	result, err := sim.Compare(ctx, seq, par, sim.CompareConfig{
		Frames:      e.cfg.Run.Frames,
		Dt:          e.cfg.Run.Dt,
		Script:      script,
		Tolerance:   e.cfg.Compare.Tolerance,
		ReportEvery: e.cfg.Compare.ReportEvery,
	})
	if result != nil {
		meta.Compare = result
		meta.Frames = result.Frames
	}
	return result, meta, err
}

func (e *Experiment) metadata(kind, solver string, s dynamo.Solver) storage.RunMetadata {
	return storage.RunMetadata{
		Kind:      kind,
		Solver:    solver,
		Backend:   BackendName(s),
		Timestamp: time.Now(),
		Rows:      e.cfg.Grid.Rows,
		Cols:      e.cfg.Grid.Cols,
		Spacing:   e.cfg.Grid.Spacing,
		Dt:        e.cfg.Run.Dt,
		Frames:    e.cfg.Run.Frames,
		Params:    dynamo.GetParams(s),
	}
}
