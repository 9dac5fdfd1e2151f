package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/clothlab/internal/metrics"
	"github.com/san-kum/clothlab/internal/sim"
)

func testSamples() []sim.Sample {
	return []sim.Sample{
		{Frame: 0, Time: 1.0 / 60, StepMs: 0.4, MaxStretch: 1.01, CenterY: 2.34},
		{Frame: 1, Time: 2.0 / 60, StepMs: 0.5, RMSE: 1e-6, MaxStretch: 1.02, CenterY: 2.33, Dragging: true},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Kind:    "compare",
		Solver:  "both",
		Backend: "cpu",
		Rows:    35,
		Cols:    35,
		Spacing: 0.05,
		Dt:      1.0 / 60,
		Frames:  2,
		Params:  map[string]float64{"stiffness": 250},
		Metrics: map[string]float64{"sag": 0.02},
		Compare: &sim.CompareResult{Frames: 2, Tolerance: 1e-2, RMSE: metrics.Summary{Count: 2, Max: 1e-6}},
	}

	runID, err := st.Save(meta, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Kind != "compare" || got.Backend != "cpu" {
		t.Errorf("unexpected metadata %+v", got)
	}
	if got.Params["stiffness"] != 250 {
		t.Errorf("expected stiffness 250, got %f", got.Params["stiffness"])
	}
	if got.Compare == nil || got.Compare.RMSE.Max != 1e-6 {
		t.Errorf("compare summary not restored: %+v", got.Compare)
	}

	samples, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1] != testSamples()[1] {
		t.Errorf("sample round trip: got %+v", samples[1])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Latest(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, kind := range []string{"run", "compare"} {
		meta := RunMetadata{Kind: kind, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if _, err := st.Save(meta, testSamples()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Kind != "run" || runs[1].Kind != "compare" {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].Kind, runs[1].Kind)
	}

	latest, err := st.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest.Kind != "compare" {
		t.Errorf("latest = %s, want compare", latest.Kind)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Kind: "run"}, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	data, err := os.ReadFile(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		t.Fatalf("trace.csv not created: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("frame,time,step_ms,parallel_ms,rmse,max_stretch")) {
		t.Errorf("unexpected trace header: %q", bytes.SplitN(data, []byte("\n"), 2)[0])
	}
}

func TestStoreEmptyTrace(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(RunMetadata{Kind: "run"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	samples, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Errorf("expected empty trace, got %d rows", len(samples))
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrace("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTrace: expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(RunMetadata{Kind: "run", Frames: 2}, testSamples())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.Run.ID != runID || len(got.Samples) != 2 {
		t.Errorf("unexpected export: id %s, %d samples", got.Run.ID, len(got.Samples))
	}
}
