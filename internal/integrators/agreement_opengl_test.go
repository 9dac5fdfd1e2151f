//go:build opengl

package integrators

import (
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothlab/internal/compute"
)

// Each entry owns the GL context for its whole body: the body runs on one
// goroutine, locked to its OS thread, and tears the context down before
// unlocking.
var _ = Describe("Cross-model agreement on OpenGL", func() {
	DescribeTable("positions stay within tolerance every frame",
		func(rows, cols, frames int, dt func(int) float32, run script) {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			defer compute.CloseContext()

			backend := compute.NewOpenGLBackend()
			if !backend.Available() {
				Skip("no OpenGL 4.3 context on this machine")
			}

			seq, err := NewSequential(rows, cols, 0.05)
			Expect(err).NotTo(HaveOccurred())
			par, err := NewParallel(rows, cols, 0.05, backend)
			Expect(err).NotTo(HaveOccurred())
			defer par.Close()
			Expect(par.Backend()).To(Equal("opengl"))

			expectAgreement(seq, par, frames, dt, run)
		},
		Entry("free hang", 12, 12, 120, dtConstant, script(noScript)),
		Entry("parameter edits", 12, 12, 120, dtConstant, script(paramScript)),
		Entry("drag protocol", 16, 16, 110, dtConstant, script(dragScript)),
		Entry("default cloth", 35, 35, 30, dtConstant, script(noScript)),
	)
})
