package metrics

import (
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

// PeakStretch tracks the largest spring stretch ratio seen during a run.
type PeakStretch struct {
	name    string
	springs []grid.Spring
	peak    float64
}

func NewPeakStretch(g *grid.Grid) *PeakStretch {
	return &PeakStretch{name: "peak_stretch", springs: g.Springs()}
}

func (m *PeakStretch) Name() string { return m.name }

func (m *PeakStretch) Observe(s dynamo.Solver, t float64) {
	if r := MaxStretch(s.Positions(), m.springs); r > m.peak {
		m.peak = r
	}
}

func (m *PeakStretch) Value() float64 { return m.peak }
func (m *PeakStretch) Reset()         { m.peak = 0 }

// Sag is the mean drop of the centre of mass below the rest height.
type Sag struct {
	name    string
	total   float64
	samples int
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (m *Sag) Name() string { return m.name }

func (m *Sag) Observe(s dynamo.Solver, t float64) {
	com := CenterOfMass(s.Positions())
	m.total += float64(grid.RestHeight) - com[1]
	m.samples++
}

func (m *Sag) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *Sag) Reset() {
	m.total = 0
	m.samples = 0
}

// GroundContact is the fraction of frames in which any particle rests on
// the ground plane.
type GroundContact struct {
	name     string
	contacts int
	samples  int
}

func NewGroundContact() *GroundContact {
	return &GroundContact{name: "ground_contact"}
}

func (m *GroundContact) Name() string { return m.name }

func (m *GroundContact) Observe(s dynamo.Solver, t float64) {
	m.samples++
	for _, p := range s.Positions() {
		if p.Y() <= physics.GroundY {
			m.contacts++
			break
		}
	}
}

func (m *GroundContact) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.contacts) / float64(m.samples)
}

func (m *GroundContact) Reset() {
	m.contacts = 0
	m.samples = 0
}

// Standard returns the metrics recorded for every run on g.
func Standard(g *grid.Grid) []dynamo.Metric {
	return []dynamo.Metric{NewPeakStretch(g), NewSag(), NewGroundContact()}
}
