// Package dynamo provides the core contracts shared by the cloth integrators.
//
// The package defines the surface every integrator exposes and the small
// primitives they share:
//
//   - [Solver]: stepping, parameter edits and the drag protocol
//   - [BackendError]: construction failures of a parallel backend
//   - [Finite]: non-finite state detection used for divergence recovery
//   - [ParallelFor]: chunked fan-out over goroutines
//
// # Example
//
//	s, err := integrators.NewSequential(35, 35, 0.05)
//	if err != nil {
//		return err
//	}
//	s.SetWindStrength(2)
//	for i := 0; i < 60; i++ {
//		s.Step(1.0 / 60)
//	}
//	mesh.Update(s.Positions())
//
// # Thread Safety
//
// Solvers are NOT safe for concurrent use. Callers that step a solver from a
// loop goroutine must route edits through that goroutine.
//
// # Logging
//
// The package holds a silent [log/slog] logger by default. Install one with
// [SetLogger] to see backend selection and divergence recovery records.
package dynamo
