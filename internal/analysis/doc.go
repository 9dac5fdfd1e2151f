// Package analysis inspects saved run traces.
//
//   - [PowerSpectrum] and [DominantFrequency]: sway frequency of a trace
//     column via the FFT
//   - [SwayPeriod]: the same oscillation measured from mean crossings
//   - [NewPortrait]: two trace columns plotted against each other
//
// Sample rate for a trace recorded at a fixed frame dt is 1/dt.
package analysis
