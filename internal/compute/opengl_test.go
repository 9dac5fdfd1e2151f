//go:build opengl

package compute

import (
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/physics"
)

func TestOpenGLBackendMatchesCPU(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer CloseContext()

	gpu := NewOpenGLBackend()
	if !gpu.Available() {
		t.Skip("no OpenGL 4.3 context on this machine")
	}
	if err := OpenContext(); err != nil {
		t.Fatalf("Available but OpenContext() = %v", err)
	}
	if b := AutoSelectBackend(); b.Name() != "opengl" {
		t.Errorf("auto selected %q with a context present", b.Name())
	}

	g, err := grid.New(6, 6, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if err := gpu.Init(g); err != nil {
		t.Fatal(err)
	}
	defer gpu.Cleanup()
	cpu, _, pos, vel := newCPU(t, 6, 6)
	gpu.Upload(pos, vel)

	params := physics.DefaultParams()
	params.SetWindStrength(3)
	u := params.Uniforms(physics.MaxSubstepDt, nil)
	for i := 0; i < 40; i++ {
		cpu.Dispatch(u)
		gpu.Dispatch(u)
	}

	cpuPos := make([]mgl32.Vec3, g.Len())
	gpuPos := make([]mgl32.Vec3, g.Len())
	cpuVel := make([]mgl32.Vec3, g.Len())
	gpuVel := make([]mgl32.Vec3, g.Len())
	cpu.ReadBack(cpuPos, cpuVel)
	gpu.ReadBack(gpuPos, gpuVel)

	for i := range cpuPos {
		if !cpuPos[i].ApproxEqualThreshold(gpuPos[i], 1e-4) {
			t.Errorf("particle %d: cpu %v, opengl %v", i, cpuPos[i], gpuPos[i])
		}
		if g.Pinned(i) && gpuPos[i] != pos[i] {
			t.Errorf("pinned particle %d moved on opengl to %v", i, gpuPos[i])
		}
	}
}
