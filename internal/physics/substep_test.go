package physics

import (
	"math"
	"testing"
)

func TestSubsteps(t *testing.T) {
	tests := []struct {
		name  string
		dt    float32
		wantN int
		ok    bool
	}{
		{"zero", 0, 0, false},
		{"negative", -0.01, 0, false},
		{"nan", float32(math.NaN()), 0, false},
		{"tiny", 1e-5, 1, true},
		{"one substep", 1.0 / 240, 1, true},
		{"sixty hz", 1.0 / 60, 4, true},
		{"thirty hz", 1.0 / 30, 8, true},
		{"clamped", 0.5, 8, true},
		{"inf clamped", float32(math.Inf(1)), 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, h, ok := Substeps(tt.dt)
			if ok != tt.ok || n != tt.wantN {
				t.Fatalf("Substeps(%v) = %d, %v, want %d, %v", tt.dt, n, ok, tt.wantN, tt.ok)
			}
			if !ok {
				return
			}
			if h > MaxSubstepDt*(1+1e-6) {
				t.Errorf("substep %v exceeds %v", h, MaxSubstepDt)
			}
			total := h * float32(n)
			want := min(tt.dt, MaxFrameDt)
			if !approx(total, want, 1e-6) {
				t.Errorf("substeps cover %v, want %v", total, want)
			}
		})
	}
}
