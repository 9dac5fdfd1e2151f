package physics

// Particle and solver constants.
const (
	Mass            float32 = 0.1
	BaseGravity     float32 = 9.81
	MaxSpeed        float32 = 8
	MaxStretchRatio float32 = 1.08
	GroundY         float32 = -1.2
	Restitution     float32 = -0.15

	// MinLength is the degenerate spring length below which a spring is
	// skipped for both forces and strain projection.
	MinLength float32 = 1e-6
)

// Defaults and bounds of the tunable parameters.
const (
	DefaultStiffness     float32 = 250
	DefaultDamping       float32 = 0.3
	DefaultSpringDamping float32 = 0.8
	DefaultGravityScale  float32 = 1
	DefaultWindStrength  float32 = 0
)

// Range is a closed interval.
type Range struct {
	Min, Max float32
}

// Clamp returns v limited to r.
func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var (
	StiffnessRange     = Range{20, 1200}
	DampingRange       = Range{0.01, 2}
	SpringDampingRange = Range{0, 4}
	GravityScaleRange  = Range{0, 3}
	WindStrengthRange  = Range{-8, 8}
)
