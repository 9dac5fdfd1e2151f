package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEnsembleKeepsOrder(t *testing.T) {
	got, err := Ensemble(context.Background(), 8, 3, func(ctx context.Context, i int) (int, error) {
		return i * i, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != i*i {
			t.Errorf("result[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestEnsembleReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	_, err := Ensemble(context.Background(), 4, 1, func(ctx context.Context, i int) (int, error) {
		ran.Add(1)
		if i == 1 {
			return 0, boom
		}
		return i, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if ran.Load() == 0 {
		t.Error("no job ran")
	}
}

func TestEnsembleSingleLimitRunsInline(t *testing.T) {
	boom := errors.New("boom")
	var calls []int
	_, err := Ensemble(context.Background(), 5, 1, func(ctx context.Context, i int) (int, error) {
		calls = append(calls, i)
		if i == 2 {
			return 0, boom
		}
		return i, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(calls) != 3 || calls[0] != 0 || calls[1] != 1 || calls[2] != 2 {
		t.Errorf("calls = %v, want [0 1 2] with nothing after the failure", calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	if _, err := Ensemble(ctx, 3, 1, func(ctx context.Context, i int) (int, error) {
		ran = true
		return i, nil
	}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled ensemble error = %v", err)
	}
	if ran {
		t.Error("job ran after cancellation")
	}
}

func TestEnsembleRunsIndependentSolvers(t *testing.T) {
	results, err := Ensemble(context.Background(), 3, 0, func(ctx context.Context, i int) (*Result, error) {
		return New(newSequential(t)).Run(ctx, Config{Frames: 10, Dt: 1.0 / 60})
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Frames != 10 {
			t.Errorf("run %d completed %d frames", i, r.Frames)
		}
		if r.Samples[9].CenterY != results[0].Samples[9].CenterY {
			t.Errorf("run %d is not deterministic", i)
		}
	}
}

func TestSnapshotPool(t *testing.T) {
	p := NewSnapshotPool(4)
	src := []mgl32.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}}

	snap := p.Snapshot(src)
	if len(snap) != 4 || snap[3] != src[3] {
		t.Fatalf("snapshot = %v", snap)
	}
	src[0] = mgl32.Vec3{9, 9, 9}
	if snap[0] == src[0] {
		t.Error("snapshot aliases its source")
	}

	p.Put(snap)
	p.Put(make([]mgl32.Vec3, 2))
	if got := p.Get(); len(got) != 4 {
		t.Errorf("pool returned buffer of length %d", len(got))
	}
}
