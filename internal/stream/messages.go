package stream

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/clothlab/internal/automation"
)

// Message types sent to clients.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
	TypeError = "error"
)

// Playback actions accepted besides the automation event actions.
const (
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionStep   = "step"
)

// Hello is the first message on every connection. It carries the topology
// a client needs to draw the frames that follow.
type Hello struct {
	Type     string   `json:"type"`
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	Solvers  []string `json:"solvers"`
	Backends []string `json:"backends"`
	// Springs are the structural links as particle index pairs.
	Springs [][2]int `json:"springs"`
	Pinned  []int    `json:"pinned"`
	Dt      float32  `json:"dt"`
}

// Frame is the state of every solver after one step. Positions[i] holds the
// particles of solver i in row-major order as [x, y, z] triples.
type Frame struct {
	Type      string             `json:"type"`
	Frame     int                `json:"frame"`
	Time      float64            `json:"time"`
	Paused    bool               `json:"paused"`
	Positions [][]mgl32.Vec3     `json:"positions"`
	StepMs    []float64          `json:"step_ms"`
	RMSE      float64            `json:"rmse"`
	Dragging  bool               `json:"dragging"`
	Dragged   int                `json:"dragged"`
	Params    map[string]float64 `json:"params"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Command is a client edit. Solver edits use the automation event fields;
// the frame stamp is ignored and edits apply before the next step.
type Command struct {
	automation.Event
}

// Validate accepts the playback actions and every automation event.
func (c Command) Validate() error {
	switch c.Action {
	case ActionPause, ActionResume, ActionStep:
		return nil
	}
	c.Frame = 0
	return c.Event.Validate()
}
