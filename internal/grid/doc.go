// Package grid describes the fixed topology of a rows x cols cloth.
//
// One neighbour enumeration feeds every consumer:
//
//   - [Grid.Springs]: the explicit spring list walked by the sequential
//     integrator
//   - [Grid.Links]: the same springs seen from one particle, derived from
//     row and column offsets, in the order the sequential integrator
//     accumulates them
//   - [NewSchedule]: the spring list split into endpoint-disjoint levels so
//     strain projection can run in parallel with the sequential result
//
// Particles are indexed row-major: r*cols + c.
package grid
