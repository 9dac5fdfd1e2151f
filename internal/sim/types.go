package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/metrics"
)

var ErrInvalidRun = errors.New("sim: invalid run configuration")

// Script is applied before every frame to the solvers of a run, in order.
// Side-by-side runs pass both solvers so edits land identically.
type Script func(frame int, solvers ...dynamo.Solver)

type Config struct {
	Frames int
	Dt     float32
	Script Script
}

func (c Config) validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidRun, c.Frames)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidRun, c.Dt)
	}
	return nil
}

// Sample is one row of a run trace. ParallelMs and RMSE are only set by
// side-by-side comparisons.
type Sample struct {
	Frame      int     `csv:"frame" json:"frame"`
	Time       float64 `csv:"time" json:"time"`
	StepMs     float64 `csv:"step_ms" json:"step_ms"`
	ParallelMs float64 `csv:"parallel_ms" json:"parallel_ms"`
	RMSE       float64 `csv:"rmse" json:"rmse"`
	MaxStretch float64 `csv:"max_stretch" json:"max_stretch"`
	CenterX    float64 `csv:"center_x" json:"center_x"`
	CenterY    float64 `csv:"center_y" json:"center_y"`
	CenterZ    float64 `csv:"center_z" json:"center_z"`
	Dragging   bool    `csv:"dragging" json:"dragging"`
}

var sampleFields = []string{
	"time", "step_ms", "parallel_ms", "rmse", "max_stretch",
	"center_x", "center_y", "center_z",
}

// SampleFields lists the numeric trace columns accepted by Field.
func SampleFields() []string {
	return append([]string(nil), sampleFields...)
}

func (s Sample) Field(name string) (float64, bool) {
	switch name {
	case "time":
		return s.Time, true
	case "step_ms":
		return s.StepMs, true
	case "parallel_ms":
		return s.ParallelMs, true
	case "rmse":
		return s.RMSE, true
	case "max_stretch":
		return s.MaxStretch, true
	case "center_x":
		return s.CenterX, true
	case "center_y":
		return s.CenterY, true
	case "center_z":
		return s.CenterZ, true
	}
	return 0, false
}

// Column extracts one numeric column from a trace.
func Column(samples []Sample, name string) ([]float64, error) {
	if _, ok := (Sample{}).Field(name); !ok {
		return nil, fmt.Errorf("sim: unknown trace field %q", name)
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i], _ = s.Field(name)
	}
	return out, nil
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	StepMs  metrics.Summary
	Frames  int
}

// gridded is implemented by solvers that expose their topology.
type gridded interface {
	Grid() *grid.Grid
}

func springsOf(s dynamo.Solver) []grid.Spring {
	if g, ok := s.(gridded); ok {
		return g.Grid().Springs()
	}
	return nil
}

func sample(frame int, t float64, s dynamo.Solver, springs []grid.Spring) Sample {
	pos := s.Positions()
	com := metrics.CenterOfMass(pos)
	return Sample{
		Frame:      frame,
		Time:       t,
		MaxStretch: metrics.MaxStretch(pos, springs),
		CenterX:    com[0],
		CenterY:    com[1],
		CenterZ:    com[2],
		Dragging:   s.IsDragging(),
	}
}
