// Package sim runs cloth solvers over many frames.
//
// A Simulator drives one dynamo.Solver at a fixed frame dt, applies an
// optional per-frame Script, and feeds metrics and observers. Compare
// drives a sequential and a parallel solver in lockstep with identical
// inputs and records the per-frame RMSE between their particle positions
// together with the wall-clock cost of each Step.
//
// Cancellation is honoured between frames only; a Step is never
// interrupted.
package sim
