package compute

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

const (
	minParticleChunk = 64
	minSpringChunk   = 128
)

type bufferSet struct {
	pos []mgl32.Vec3
	vel []mgl32.Vec3
}

// CPUBackend runs the kernel on goroutines. Forces are gathered per particle
// from its link table and strain levels run endpoint-disjoint springs
// concurrently, so results match the sequential integrator.
type CPUBackend struct {
	workers  int
	grid     *grid.Grid
	fixed    []bool
	links    []grid.Link
	start    []int32
	schedule *grid.Schedule
	sets     [2]bufferSet
	read     int
}

// NewCPUBackend returns a backend fanning out over workers goroutines;
// workers <= 0 uses GOMAXPROCS.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = dynamo.Workers()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }

func (c *CPUBackend) Init(g *grid.Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", dynamo.ErrKernelInit)
	}
	n := g.Len()
	c.grid = g
	c.fixed = g.FixedFlags()
	c.links, c.start = g.LinkTable()
	c.schedule = grid.NewSchedule(g.Springs(), n)
	for k := range c.sets {
		c.sets[k] = bufferSet{pos: make([]mgl32.Vec3, n), vel: make([]mgl32.Vec3, n)}
	}
	c.read = 0

	dynamo.Logger().Debug("cpu kernel ready",
		"particles", n, "links", len(c.links), "strain_levels", c.schedule.Levels(), "workers", c.workers)
	return nil
}

func (c *CPUBackend) Upload(pos, vel []mgl32.Vec3) {
	for k := range c.sets {
		copy(c.sets[k].pos, pos)
		copy(c.sets[k].vel, vel)
	}
	c.read = 0
}

func (c *CPUBackend) Dispatch(u physics.Uniforms) {
	in := &c.sets[c.read]
	out := &c.sets[1-c.read]

	dynamo.ParallelFor(c.grid.Len(), c.workers, minParticleChunk, func(start, end int) {
		for i := start; i < end; i++ {
			c.integrate(i, &u, in, out)
		}
	})

	c.project(out.pos, &u)

	if u.Dragged >= 0 {
		out.pos[u.Dragged] = u.DragTarget
		out.vel[u.Dragged] = mgl32.Vec3{}
	}

	c.read = 1 - c.read
}

// integrate is the per-particle kernel: it reads only the in set and writes
// only particle i of the out set.
func (c *CPUBackend) integrate(i int, u *physics.Uniforms, in, out *bufferSet) {
	p, v := in.pos[i], in.vel[i]

	if c.fixed[i] {
		out.pos[i] = p
		out.vel[i] = mgl32.Vec3{}
		return
	}
	if i == u.Dragged {
		out.pos[i] = u.DragTarget
		out.vel[i] = mgl32.Vec3{}
		return
	}

	force := u.Gravity.Mul(u.Mass)
	for _, l := range c.links[c.start[i]:c.start[i+1]] {
		j := l.Other
		if l.Head {
			if f, ok := physics.SpringForce(p, in.pos[j], v, in.vel[j], l.Rest, u.Stiffness, u.SpringDamping); ok {
				force = force.Add(f)
			}
			continue
		}
		if f, ok := physics.SpringForce(in.pos[j], p, in.vel[j], v, l.Rest, u.Stiffness, u.SpringDamping); ok {
			force = force.Sub(f)
		}
	}

	out.pos[i], out.vel[i] = physics.Advance(p, v, force, u)
}

func (c *CPUBackend) project(pos []mgl32.Vec3, u *physics.Uniforms) {
	for k := 0; k < c.schedule.Levels(); k++ {
		level := c.schedule.Level(k)
		dynamo.ParallelFor(len(level), c.workers, minSpringChunk, func(start, end int) {
			for _, s := range level[start:end] {
				physics.ProjectSpring(pos, s.A, s.B, s.Rest, u.MaxStretchRatio,
					u.Locked(s.A, c.fixed), u.Locked(s.B, c.fixed))
			}
		})
	}
}

func (c *CPUBackend) ReadBack(pos, vel []mgl32.Vec3) {
	copy(pos, c.sets[c.read].pos)
	copy(vel, c.sets[c.read].vel)
}

func (c *CPUBackend) Cleanup() {
	c.sets = [2]bufferSet{}
	c.links, c.start, c.schedule = nil, nil, nil
}
