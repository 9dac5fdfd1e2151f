package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// SnapshotPool recycles position buffers of one particle count, for
// consumers that hand frames to other goroutines.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(particles int) *SnapshotPool {
	return &SnapshotPool{
		size: particles,
		pool: sync.Pool{
			New: func() any {
				return make([]mgl32.Vec3, particles)
			},
		},
	}
}

func (p *SnapshotPool) Get() []mgl32.Vec3 {
	return p.pool.Get().([]mgl32.Vec3)
}

// Put returns buf to the pool. Buffers of the wrong size are dropped.
func (p *SnapshotPool) Put(buf []mgl32.Vec3) {
	if len(buf) == p.size {
		p.pool.Put(buf)
	}
}

// Snapshot copies src into a pooled buffer.
func (p *SnapshotPool) Snapshot(src []mgl32.Vec3) []mgl32.Vec3 {
	dst := p.Get()
	copy(dst, src)
	return dst
}
