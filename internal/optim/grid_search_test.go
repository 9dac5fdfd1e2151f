package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Rows = 6
	cfg.Grid.Cols = 6
	cfg.Backend = "cpu"
	cfg.Run.Frames = 30
	return cfg
}

func TestCombinations(t *testing.T) {
	g := NewGridSearch(
		[]string{dynamo.ParamStiffness, dynamo.ParamDamping},
		[][]float32{{100, 200, 300}, {0.1, 0.5}},
	)
	combos := g.Combinations()
	if len(combos) != 6 {
		t.Fatalf("combinations = %d, want 6", len(combos))
	}
	if combos[1][dynamo.ParamStiffness] != 100 || combos[1][dynamo.ParamDamping] != 0.5 {
		t.Errorf("last parameter should vary fastest: %v", combos[1])
	}
	if combos[5][dynamo.ParamStiffness] != 300 {
		t.Errorf("last combination = %v", combos[5])
	}
}

func TestSearchRejects(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float32
		metric string
		want   error
	}{
		{"unknown param", []string{"mass"}, [][]float32{{1}}, "sag", dynamo.ErrUnknownParam},
		{"unknown metric", []string{dynamo.ParamWindStrength}, [][]float32{{0}}, "energy", ErrUnknownMetric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewGridSearch(tt.params, tt.ranges).Search(context.Background(), smallConfig(), tt.metric)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, _, err := NewGridSearch([]string{dynamo.ParamDamping}, nil).Search(context.Background(), smallConfig(), "sag"); err == nil {
		t.Error("expected error for mismatched value lists")
	}
}

func TestSearchPicksSmallestMetric(t *testing.T) {
	g := NewGridSearch([]string{dynamo.ParamGravityScale}, [][]float32{{1, 0, 2}})

	best, all, err := g.Search(context.Background(), smallConfig(), "sag")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("candidates = %d", len(all))
	}
	if best.Params[dynamo.ParamGravityScale] != 0 {
		t.Errorf("without gravity the cloth sags least, got best %v", best)
	}
	for _, c := range all {
		if c.Value < best.Value {
			t.Errorf("candidate %v beats best %v", c, best)
		}
	}
}
