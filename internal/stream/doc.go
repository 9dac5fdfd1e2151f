// Package stream serves a running cloth over websockets.
//
// Every connection first receives a [Hello] with the grid topology, then a
// [Frame] after each step. Clients send JSON [Command] values:
//
//	{"action": "set", "param": "wind_strength", "value": 4}
//	{"action": "begin_drag", "origin": [0, 4, 0], "dir": [0, -1, 0], "radius": 0.2}
//	{"action": "drag", "target": [0.3, 2, 0]}
//	{"action": "end_drag"}
//	{"action": "pause"}
//
// Edits are applied to every solver before the next step, so a sequential
// and a parallel solver served together stay comparable frame by frame.
package stream
