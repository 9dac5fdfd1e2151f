package sim

import (
	"context"
	"time"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/metrics"
)

// Simulator drives one solver for a fixed number of frames.
type Simulator struct {
	solver    dynamo.Solver
	springs   []grid.Spring
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(solver dynamo.Solver) *Simulator {
	return &Simulator{
		solver:    solver,
		springs:   springsOf(solver),
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Solver() dynamo.Solver         { return s.solver }

// Run steps the solver cfg.Frames times. Cancellation is checked between
// frames; a cancelled run returns the frames completed so far together
// with the context error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Samples: make([]Sample, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}
	stepMs := make([]float64, 0, cfg.Frames)

	t := 0.0
	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			s.finish(result, stepMs)
			return result, ctx.Err()
		default:
		}

		if cfg.Script != nil {
			cfg.Script(frame, s.solver)
		}

		start := time.Now()
		s.solver.Step(cfg.Dt)
		ms := millis(time.Since(start))
		t += float64(cfg.Dt)

		row := sample(frame, t, s.solver, s.springs)
		row.StepMs = ms
		result.Samples = append(result.Samples, row)
		stepMs = append(stepMs, ms)

		for _, m := range s.metrics {
			m.Observe(s.solver, t)
		}
		for _, obs := range s.observers {
			obs.OnFrame(frame, t, s.solver)
		}
		result.Frames++
	}

	s.finish(result, stepMs)
	return result, nil
}

func (s *Simulator) finish(result *Result, stepMs []float64) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.StepMs = metrics.Summarize(stepMs)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
