// Package physics holds the stepping and stability policy shared by both
// cloth integrators.
//
// Both integrators call the same helpers so their floating point results
// agree:
//
//   - [Params]: clamped solver parameters and their defaults
//   - [Substeps]: frame dt clamping and substep planning
//   - [SpringForce], [Advance]: the per-substep force law and semi-implicit
//     Euler update with speed and ground clamps
//   - [ProjectSpring]: the strain-limit correction of one spring
//   - [Pick], [Drag]: ray picking and the drag state machine
//
// Positions are in metres, velocities in metres per second, the cloth hangs
// along -y.
package physics
