// Package compute provides the data-parallel backends behind the parallel
// cloth integrator.
//
// A backend owns two buffer sets (positions and velocities) and an immutable
// fixed-flag buffer. Every dispatch runs one substep: the integrate kernel
// reads set A and writes set B for every particle, then the strain levels are
// projected in place on B, then the sets swap.
//
//   - CPU: goroutine fan-out over particles and over each strain level
//   - OpenGL: GLSL 4.30 compute shader, built with -tags opengl and a current
//     GL context on the calling thread
//
// Select a backend by name:
//
//	backend, err := compute.Lookup("auto")
//	solver, err := integrators.NewParallel(35, 35, 0.05, backend)
//
// The same kernel is available as WGSL and compiles to SPIR-V with
// [CompileKernelSPIRV] for hosts that run it through Vulkan or WebGPU.
package compute
