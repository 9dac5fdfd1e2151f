package dynamo

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownParam indicates a parameter name no solver exposes.
var ErrUnknownParam = errors.New("dynamo: unknown parameter")

// Parameter names accepted by SetParam and returned by GetParams.
const (
	ParamStiffness     = "stiffness"
	ParamDamping       = "damping"
	ParamSpringDamping = "spring_damping"
	ParamGravityScale  = "gravity_scale"
	ParamWindStrength  = "wind_strength"
)

// GetParams returns the current parameter values of s keyed by name.
func GetParams(s Solver) map[string]float64 {
	return map[string]float64{
		ParamStiffness:     float64(s.Stiffness()),
		ParamDamping:       float64(s.Damping()),
		ParamSpringDamping: float64(s.SpringDamping()),
		ParamGravityScale:  float64(s.GravityScale()),
		ParamWindStrength:  float64(s.WindStrength()),
	}
}

// ParamNames lists the accepted parameter names in sorted order.
func ParamNames() []string {
	names := []string{ParamStiffness, ParamDamping, ParamSpringDamping, ParamGravityScale, ParamWindStrength}
	sort.Strings(names)
	return names
}

// ValidParam reports whether name is an accepted parameter name.
func ValidParam(name string) bool {
	switch name {
	case ParamStiffness, ParamDamping, ParamSpringDamping, ParamGravityScale, ParamWindStrength:
		return true
	}
	return false
}

// SetParam writes one parameter by name. The solver clamps the value.
func SetParam(s Solver, name string, value float32) error {
	switch name {
	case ParamStiffness:
		s.SetStiffness(value)
	case ParamDamping:
		s.SetDamping(value)
	case ParamSpringDamping:
		s.SetSpringDamping(value)
	case ParamGravityScale:
		s.SetGravityScale(value)
	case ParamWindStrength:
		s.SetWindStrength(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
