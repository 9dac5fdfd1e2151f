// Package automation scripts comparison runs.
//
// A Scenario is a YAML list of frame-stamped events (set, reset,
// begin_drag, drag, drag_ray, end_drag) applied identically to the
// sequential and the parallel solver before the stamped frame is stepped:
//
//	name: gust
//	frames: 240
//	params: {stiffness: 400}
//	events:
//	  - {frame: 30, action: set, param: wind_strength, value: 6}
//	  - {frame: 60, action: begin_drag, origin: [0, 4, 0], dir: [0, -1, 0]}
//	  - {frame: 61, action: drag, target: [0.2, 2, 0.1]}
//	  - {frame: 120, action: end_drag}
//
// A ParameterSweep repeats the comparison across values of one parameter.
package automation
