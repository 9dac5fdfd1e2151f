package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/experiment"
	"github.com/san-kum/clothlab/internal/sim"
)

var ErrUnknownMetric = errors.New("optim: unknown metric")

// GridSearch runs one solver at every combination of the listed parameter
// values and keeps the combination with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float32

	// Solver defaults to the sequential solver.
	Solver string
	// Concurrency bounds the runs at once; zero uses one per CPU. The
	// parallel solver on a device backend runs one at a time on the calling
	// goroutine.
	Concurrency int
}

// Candidate is one evaluated parameter combination.
type Candidate struct {
	Params map[string]float32 `json:"params"`
	Value  float64            `json:"value"`
}

func NewGridSearch(params []string, ranges [][]float32) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

func (g *GridSearch) validate() error {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return fmt.Errorf("grid search needs one value list per parameter, got %d names and %d lists", len(g.paramNames), len(g.ranges))
	}
	for i, name := range g.paramNames {
		if !dynamo.ValidParam(name) {
			return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, name)
		}
		if len(g.ranges[i]) == 0 {
			return fmt.Errorf("no values for %s", name)
		}
	}
	return nil
}

// Combinations lists every parameter combination, the last parameter
// varying fastest.
func (g *GridSearch) Combinations() []map[string]float32 {
	var out []map[string]float32
	g.combine(0, map[string]float32{}, &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float32, out *[]map[string]float32) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	name := g.paramNames[depth]
	for _, v := range g.ranges[depth] {
		next := make(map[string]float32, len(current)+1)
		for k, cv := range current {
			next[k] = cv
		}
		next[name] = v
		g.combine(depth+1, next, out)
	}
}

// Search evaluates every combination on top of base and returns the best
// candidate along with all of them in combination order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Candidate, []Candidate, error) {
	if err := g.validate(); err != nil {
		return Candidate{}, nil, err
	}
	solver := g.Solver
	if solver == "" {
		solver = experiment.Sequential
	}

	limit := g.Concurrency
	if solver == experiment.Parallel {
		backend, err := compute.Lookup(base.Backend)
		if err != nil {
			return Candidate{}, nil, err
		}
		if backend.Name() != "cpu" {
			limit = 1
		}
	}

	combos := g.Combinations()
	all, err := sim.Ensemble(ctx, len(combos), limit, func(ctx context.Context, i int) (Candidate, error) {
		cfg := *base
		for name, v := range combos[i] {
			cfg.Params.Set(name, v)
		}

		result, _, err := experiment.New(&cfg).Run(ctx, solver, nil)
		if err != nil {
			return Candidate{}, err
		}
		value, ok := result.Metrics[metricName]
		if !ok {
			return Candidate{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metricName)
		}
		return Candidate{Params: combos[i], Value: value}, nil
	})
	if err != nil {
		return Candidate{}, nil, err
	}

	best := Candidate{Value: math.Inf(1)}
	for _, c := range all {
		if c.Value < best.Value {
			best = c
		}
	}
	dynamo.Logger().Info("grid search done", "metric", metricName, "runs", len(all), "best", best.Value)
	return best, all, nil
}
