package integrators

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/metrics"
)

const agreementTolerance = 1e-2

// script edits both solvers identically before the given frame is stepped.
type script func(frame int, solvers ...dynamo.Solver)

func dtConstant(frame int) float32 { return 1.0 / 60 }

// dtJitter mixes short, long and clamped frames.
func dtJitter(frame int) float32 {
	switch frame % 5 {
	case 0:
		return 1.0 / 144
	case 1:
		return 1.0 / 30
	case 2:
		return 0.1
	case 3:
		return 0.0005
	}
	return 1.0 / 60
}

func noScript(int, ...dynamo.Solver) {}

func paramScript(frame int, solvers ...dynamo.Solver) {
	for _, s := range solvers {
		switch frame {
		case 20:
			s.SetWindStrength(5)
			s.SetStiffness(600)
		case 50:
			s.SetGravityScale(2.2)
			s.SetDamping(0.05)
		case 80:
			s.SetSpringDamping(2)
			s.SetWindStrength(-7)
		}
	}
}

func dragScript(frame int, solvers ...dynamo.Solver) {
	for _, s := range solvers {
		switch {
		case frame == 10:
			Expect(s.BeginDrag(mgl32.Vec3{0.1, 4, 0.1}, mgl32.Vec3{0, -1, 0}, 0.3)).To(BeTrue())
		case frame > 10 && frame < 60:
			phase := float64(frame) / 8
			s.UpdateDrag(mgl32.Vec3{float32(0.4 * math.Cos(phase)), 1.6, float32(0.4 * math.Sin(phase))})
		case frame >= 60 && frame < 90:
			s.UpdateDragFromRay(mgl32.Vec3{0, 3, float32(frame-60) * 0.02}, mgl32.Vec3{0, -1, 0.2})
		case frame == 90:
			s.EndDrag()
		}
	}
}

func resetScript(frame int, solvers ...dynamo.Solver) {
	for _, s := range solvers {
		switch frame {
		case 15:
			s.SetWindStrength(8)
		case 40:
			s.Reset()
		}
	}
}

// expectAgreement steps both solvers through frames and checks them after
// every frame.
func expectAgreement(seq *Sequential, par *Parallel, frames int, dt func(int) float32, run script) {
	Expect(metrics.RMSE(seq.Positions(), par.Positions())).To(BeNumerically("==", 0))

	for frame := 0; frame < frames; frame++ {
		run(frame, seq, par)

		d := dt(frame)
		seq.Step(d)
		par.Step(d)

		rmse := metrics.RMSE(seq.Positions(), par.Positions())
		Expect(rmse).To(BeNumerically("<", agreementTolerance), "frame %d", frame)
		Expect(par.IsDragging()).To(Equal(seq.IsDragging()), "frame %d", frame)
	}
}

var _ = Describe("Cross-model agreement", func() {
	var (
		seq *Sequential
		par *Parallel
	)

	newPair := func(rows, cols int) {
		var err error
		seq, err = NewSequential(rows, cols, 0.05)
		Expect(err).NotTo(HaveOccurred())
		par, err = NewParallel(rows, cols, 0.05, compute.NewCPUBackend(4))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(par.Close)
	}

	DescribeTable("positions stay within tolerance every frame",
		func(rows, cols, frames int, dt func(int) float32, run script) {
			newPair(rows, cols)
			expectAgreement(seq, par, frames, dt, run)
		},
		Entry("free hang", 12, 12, 120, dtConstant, script(noScript)),
		Entry("irregular frame times", 10, 14, 100, dtJitter, script(noScript)),
		Entry("parameter edits", 12, 12, 120, dtConstant, script(paramScript)),
		Entry("drag protocol", 16, 16, 110, dtConstant, script(dragScript)),
		Entry("reset mid-run", 8, 8, 70, dtConstant, script(resetScript)),
		Entry("minimal grid", 2, 2, 60, dtConstant, script(noScript)),
		Entry("default cloth", 35, 35, 30, dtConstant, script(noScript)),
	)

	It("selects the same particle for the same ray", func() {
		newPair(10, 10)
		for i := 0; i < 30; i++ {
			seq.Step(1.0 / 60)
			par.Step(1.0 / 60)
		}

		origin := mgl32.Vec3{0, 3, 0}
		dir := mgl32.Vec3{0.05, -1, 0.1}
		Expect(seq.BeginDrag(origin, dir, 0.2)).To(Equal(par.BeginDrag(origin, dir, 0.2)))

		si, sok := seq.DraggedIndex()
		pi, pok := par.DraggedIndex()
		Expect(pok).To(Equal(sok))
		Expect(pi).To(Equal(si))
	})

	It("recovers from divergence in both models", func() {
		newPair(6, 6)
		nan := float32(math.NaN())
		for _, s := range []dynamo.Solver{seq, par} {
			Expect(s.BeginDrag(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -1, 0}, 0.2)).To(BeTrue())
			s.UpdateDrag(mgl32.Vec3{nan, 0, 0})
			s.Step(1.0 / 60)
			Expect(dynamo.Finite(s.Positions())).To(BeTrue())
			Expect(s.IsDragging()).To(BeFalse())
		}
		Expect(metrics.RMSE(seq.Positions(), par.Positions())).To(BeNumerically("==", 0))
	})
})
