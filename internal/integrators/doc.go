// Package integrators implements the two cloth solvers.
//
// [Sequential] walks an explicit spring list and one particle loop per
// phase, projecting strain limits Gauss-Seidel style. [Parallel] runs the
// same substep as a kernel over every particle through a [compute.Backend],
// with ping-pong buffers and a host readback at the end of each Step.
//
// Both satisfy [dynamo.Solver] and are expected to produce the same
// trajectory for the same inputs; the agreement suite in this package
// checks it.
package integrators
