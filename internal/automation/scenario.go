package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/experiment"
	"github.com/san-kum/clothlab/internal/sim"
	"github.com/san-kum/clothlab/internal/storage"
)

// Event actions.
const (
	ActionSet       = "set"
	ActionReset     = "reset"
	ActionBeginDrag = "begin_drag"
	ActionDrag      = "drag"
	ActionDragRay   = "drag_ray"
	ActionEndDrag   = "end_drag"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted sequence of solver edits, each stamped with the
// frame it is applied before.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Frames      int                `yaml:"frames"`
	Dt          float32            `yaml:"dt"`
	Params      map[string]float32 `yaml:"params"`
	Events      []Event            `yaml:"events"`
}

// Event is a single scripted edit. Vectors are [x, y, z].
type Event struct {
	Frame  int       `yaml:"frame" json:"frame,omitempty"`
	Action string    `yaml:"action" json:"action"`
	Param  string    `yaml:"param,omitempty" json:"param,omitempty"`
	Value  float32   `yaml:"value,omitempty" json:"value,omitempty"`
	Origin []float32 `yaml:"origin,omitempty" json:"origin,omitempty"`
	Dir    []float32 `yaml:"dir,omitempty" json:"dir,omitempty"`
	Target []float32 `yaml:"target,omitempty" json:"target,omitempty"`
	Radius float32   `yaml:"radius,omitempty" json:"radius,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalidScenario, s.Frames)
	}
	if s.Dt < 0 {
		return fmt.Errorf("%w: dt %v", ErrInvalidScenario, s.Dt)
	}
	for name := range s.Params {
		if !dynamo.ValidParam(name) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidScenario, dynamo.ErrUnknownParam, name)
		}
	}
	for i, ev := range s.Events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrInvalidScenario, i, err)
		}
	}
	return nil
}

// Validate checks the action name and the fields it needs.
func (ev Event) Validate() error {
	if ev.Frame < 0 {
		return fmt.Errorf("negative frame %d", ev.Frame)
	}
	switch ev.Action {
	case ActionSet:
		if !dynamo.ValidParam(ev.Param) {
			return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, ev.Param)
		}
	case ActionReset, ActionEndDrag:
	case ActionBeginDrag:
		if err := need3("origin", ev.Origin); err != nil {
			return err
		}
		if err := need3("dir", ev.Dir); err != nil {
			return err
		}
		if ev.Radius < 0 {
			return fmt.Errorf("negative radius %v", ev.Radius)
		}
	case ActionDrag:
		return need3("target", ev.Target)
	case ActionDragRay:
		if err := need3("origin", ev.Origin); err != nil {
			return err
		}
		return need3("dir", ev.Dir)
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

func need3(name string, v []float32) error {
	if len(v) != 3 {
		return fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
	return nil
}

func vec(v []float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// Apply performs the event on s.
func (ev Event) Apply(s dynamo.Solver) {
	switch ev.Action {
	case ActionSet:
		_ = dynamo.SetParam(s, ev.Param, ev.Value)
	case ActionReset:
		s.Reset()
	case ActionBeginDrag:
		radius := ev.Radius
		if radius == 0 {
			radius = config.DefaultPickRadius
		}
		if !s.BeginDrag(vec(ev.Origin), vec(ev.Dir), radius) {
			dynamo.Logger().Debug("scripted pick missed", "frame", ev.Frame)
		}
	case ActionDrag:
		s.UpdateDrag(vec(ev.Target))
	case ActionDragRay:
		s.UpdateDragFromRay(vec(ev.Origin), vec(ev.Dir))
	case ActionEndDrag:
		s.EndDrag()
	}
}

// Script returns a sim.Script applying the events of each frame, in file
// order, to every solver it is given.
func (s *Scenario) Script() sim.Script {
	byFrame := make(map[int][]Event)
	for _, ev := range s.Events {
		byFrame[ev.Frame] = append(byFrame[ev.Frame], ev)
	}
	return func(frame int, solvers ...dynamo.Solver) {
		for _, ev := range byFrame[frame] {
			for _, solver := range solvers {
				ev.Apply(solver)
			}
		}
	}
}

// LastFrame is the latest frame any event is stamped with, or -1.
func (s *Scenario) LastFrame() int {
	last := -1
	for _, ev := range s.Events {
		last = max(last, ev.Frame)
	}
	return last
}

// Configure returns a copy of base with the scenario overrides applied. A
// scenario without a frame count runs until one second past its last event.
func (s *Scenario) Configure(base *config.Config) *config.Config {
	cfg := *base
	for name, v := range s.Params {
		cfg.Params.Set(name, v)
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	switch {
	case s.Frames > 0:
		cfg.Run.Frames = s.Frames
	case s.LastFrame() >= 0:
		cfg.Run.Frames = s.LastFrame() + int(math.Round(float64(1/cfg.Run.Dt))) + 1
	}
	return &cfg
}

// RunScenario compares the sequential and parallel solvers under the
// scenario script.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config) (*sim.CompareResult, storage.RunMetadata, error) {
	cfg := scenario.Configure(base)
	dynamo.Logger().Info("running scenario", "name", scenario.Name, "frames", cfg.Run.Frames, "events", len(scenario.Events))

	result, meta, err := experiment.New(cfg).Compare(ctx, scenario.Script())
	meta.Kind = "scenario"
	meta.Scenario = scenario.Name
	if err != nil {
		return result, meta, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return result, meta, nil
}
