// Package experiment turns a configuration into running solvers.
//
// The Registry maps solver names to factories; the parallel factory falls
// back to the CPU backend when the configured device backend cannot start.
// An Experiment wires solvers, metrics and the sim runners together and
// produces the metadata saved alongside each run.
package experiment
