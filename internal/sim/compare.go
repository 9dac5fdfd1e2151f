package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/metrics"
)

type CompareConfig struct {
	Frames int
	Dt     float32
	Script Script
	// Tolerance is the per-frame RMSE bound; frames at or above it count
	// as violations.
	Tolerance float64
	// ReportEvery logs a windowed summary every N frames. Zero disables it.
	ReportEvery int
}

type CompareResult struct {
	Samples      []Sample        `json:"-"`
	Frames       int             `json:"frames"`
	Tolerance    float64         `json:"tolerance"`
	Violations   int             `json:"violations"`
	RMSE         metrics.Summary `json:"rmse"`
	SequentialMs metrics.Summary `json:"sequential_ms"`
	ParallelMs   metrics.Summary `json:"parallel_ms"`
}

// Agree reports whether every compared frame stayed under the tolerance.
func (r *CompareResult) Agree() bool {
	return r.Violations == 0 && r.Frames > 0
}

// window accumulates the periodic compare report.
type window struct {
	seqMs, parMs, rmse float64
	n                  int
}

func (w *window) add(seqMs, parMs, rmse float64) {
	w.seqMs += seqMs
	w.parMs += parMs
	w.rmse += rmse
	w.n++
}

func (w *window) flush(frame int) {
	if w.n == 0 {
		return
	}
	n := float64(w.n)
	dynamo.Logger().Info("solver compare",
		"frame", frame,
		"avg_sequential_ms", w.seqMs/n,
		"avg_parallel_ms", w.parMs/n,
		"avg_rmse", w.rmse/n,
	)
	*w = window{}
}

// Compare steps seq and par side by side with identical inputs and records
// the per-frame RMSE between their positions along with the cost of each
// step. The script sees the solvers in (seq, par) order.
func Compare(ctx context.Context, seq, par dynamo.Solver, cfg CompareConfig) (*CompareResult, error) {
	run := Config{Frames: cfg.Frames, Dt: cfg.Dt, Script: cfg.Script}
	if err := run.validate(); err != nil {
		return nil, err
	}
	if seq.Rows() != par.Rows() || seq.Cols() != par.Cols() {
		return nil, fmt.Errorf("%w: grids differ, %dx%d vs %dx%d",
			ErrInvalidRun, seq.Rows(), seq.Cols(), par.Rows(), par.Cols())
	}

	springs := springsOf(seq)
	result := &CompareResult{
		Samples:   make([]Sample, 0, cfg.Frames),
		Tolerance: cfg.Tolerance,
	}
	var (
		seqMs = make([]float64, 0, cfg.Frames)
		parMs = make([]float64, 0, cfg.Frames)
		rmse  = make([]float64, 0, cfg.Frames)
		w     window
	)

	finish := func() {
		result.SequentialMs = metrics.Summarize(seqMs)
		result.ParallelMs = metrics.Summarize(parMs)
		result.RMSE = metrics.Summarize(rmse)
	}

	t := 0.0
	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		if cfg.Script != nil {
			cfg.Script(frame, seq, par)
		}

		start := time.Now()
		seq.Step(cfg.Dt)
		sMs := millis(time.Since(start))

		start = time.Now()
		par.Step(cfg.Dt)
		pMs := millis(time.Since(start))

		t += float64(cfg.Dt)
		e := metrics.RMSE(seq.Positions(), par.Positions())
		if math.IsNaN(e) || e >= cfg.Tolerance {
			result.Violations++
		}

		row := sample(frame, t, seq, springs)
		row.StepMs = sMs
		row.ParallelMs = pMs
		row.RMSE = e
		result.Samples = append(result.Samples, row)
		seqMs = append(seqMs, sMs)
		parMs = append(parMs, pMs)
		rmse = append(rmse, e)
		result.Frames++

		w.add(sMs, pMs, e)
		if cfg.ReportEvery > 0 && (frame+1)%cfg.ReportEvery == 0 {
			w.flush(frame)
		}
	}

	finish()
	return result, nil
}
