// Package viz draws the cloth in a terminal.
//
// [Model] is a Bubble Tea program that steps one or more solvers in
// lockstep, renders the structural mesh on a braille [Canvas] through an
// orthographic orbit [Camera], and shows per-solver step cost together with
// the RMSE between the first two solvers.
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	N      - Single frame while paused
//	R      - Reset every solver
//	Tab    - Cycle parameters
//	, .    - Decrease / increase the selected parameter on every solver
//	Arrows - Move the pick cursor
//	D      - Grab the particle under the cursor, or release it
//	T      - Cycle color themes
//	?      - Show help overlay
//
// The cursor casts an orthographic ray through the camera; grabbing and
// moving it drive the drag protocol of every solver identically.
//
// [LiveRenderer] is a lighter observer that redraws a running sim on a
// plain terminal.
package viz
