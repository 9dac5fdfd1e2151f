package automation

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/experiment"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/metrics"
	"github.com/san-kum/clothlab/internal/sim"
)

// ParameterSweep compares the two solvers across evenly spaced values of
// one parameter.
type ParameterSweep struct {
	Param    string
	Min      float32
	Max      float32
	NumSteps int
	Script   sim.Script
	// Concurrency bounds the comparisons run at once; zero uses one per
	// CPU. Device backends always run one at a time on the calling
	// goroutine.
	Concurrency int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	// Requested is the swept value; Value is what the solvers kept after
	// clamping.
	Requested   float32         `json:"requested"`
	Value       float32         `json:"value"`
	RMSE        metrics.Summary `json:"rmse"`
	Violations  int             `json:"violations"`
	PeakStretch float64         `json:"peak_stretch"`
	FinalSag    float64         `json:"final_sag"`
}

func (r SweepResult) Agree() bool { return r.Violations == 0 }

// Values returns the swept parameter values.
func (p *ParameterSweep) Values() []float32 {
	if p.NumSteps <= 1 {
		return []float32{p.Min}
	}
	step := (p.Max - p.Min) / float32(p.NumSteps-1)
	values := make([]float32, p.NumSteps)
	for i := range values {
		values[i] = p.Min + float32(i)*step
	}
	values[len(values)-1] = p.Max
	return values
}

func (p *ParameterSweep) validate() error {
	if !dynamo.ValidParam(p.Param) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, p.Param)
	}
	if p.NumSteps < 1 {
		return fmt.Errorf("sweep needs at least one step, got %d", p.NumSteps)
	}
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config) ([]SweepResult, error) {
	if err := sweep.validate(); err != nil {
		return nil, err
	}

	backend, err := compute.Lookup(base.Backend)
	if err != nil {
		return nil, err
	}
	limit := sweep.Concurrency
	if backend.Name() != "cpu" {
		limit = 1
	}

	values := sweep.Values()
	return sim.Ensemble(ctx, len(values), limit, func(ctx context.Context, i int) (SweepResult, error) {
		cfg := *base
		cfg.Params.Set(sweep.Param, values[i])

		result, meta, err := experiment.New(&cfg).Compare(ctx, sweep.Script)
		if err != nil {
			return SweepResult{}, fmt.Errorf("sweep %s=%v: %w", sweep.Param, values[i], err)
		}

		stretch, _ := sim.Column(result.Samples, "max_stretch")
		r := SweepResult{
			Requested:  values[i],
			Value:      float32(meta.Params[sweep.Param]),
			RMSE:       result.RMSE,
			Violations: result.Violations,
		}
		if len(stretch) > 0 {
			r.PeakStretch = floats.Max(stretch)
			last := result.Samples[len(result.Samples)-1]
			r.FinalSag = float64(grid.RestHeight) - last.CenterY
		}

		dynamo.Logger().Info("sweep step done", "param", sweep.Param, "value", r.Value, "max_rmse", r.RMSE.Max)
		return r, nil
	})
}
