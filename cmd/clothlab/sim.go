package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothlab/internal/automation"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/experiment"
	"github.com/san-kum/clothlab/internal/sim"
	"github.com/san-kum/clothlab/internal/storage"
	"github.com/san-kum/clothlab/internal/stream"
	"github.com/san-kum/clothlab/internal/viz"
)

var (
	theme      string
	solverName string
	watch      bool
	svgOut     string
	frameRate  int
	serveRate  int
	addr       string

	sweepParam   string
	sweepMin     float32
	sweepMax     float32
	sweepSteps   int
	sweepWorkers int
)

var errDisagree = errors.New("sequential and parallel solvers disagree")

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	seq, par, err := experiment.New(cfg).Pair()
	if err != nil {
		return err
	}
	defer experiment.Close(seq, par)

	return viz.Run(viz.Options{
		Solvers:    []dynamo.Solver{seq, par},
		Names:      []string{experiment.Sequential, experiment.Parallel},
		Backends:   []string{"", experiment.BackendName(par)},
		Dt:         cfg.Run.Dt,
		PickRadius: cfg.Run.PickRadius,
		Tolerance:  cfg.Compare.Tolerance,
		Theme:      theme,
	})
}

func runSolver(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var observers []dynamo.Observer
	if watch {
		r := viz.NewLiveRenderer(os.Stdout, frameRate)
		r.Start()
		defer r.Stop()
		observers = append(observers, r)
	}
	var snapshot *viz.SVGObserver
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		snapshot = viz.NewSVGObserver(f)
		snapshot.Theme = viz.GetTheme(theme)
		observers = append(observers, snapshot)
	}

	result, meta, err := experiment.New(cfg).Run(cmd.Context(), solverName, nil, observers...)
	if err != nil && result == nil {
		return err
	}
	id, serr := storage.New(dataDir).Save(meta, result.Samples)
	if serr != nil {
		return serr
	}

	fmt.Printf("run %s: %s, %d frames, %.3f ms/step (p95 %.3f)\n",
		id, solverName, result.Frames, result.StepMs.Mean, result.StepMs.P95)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "  %s\t%.4f\n", name, result.Metrics[name])
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if snapshot != nil {
		if ferr := snapshot.Flush(); ferr != nil {
			return ferr
		}
		fmt.Printf("final frame written to %s\n", svgOut)
	}
	return err
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	result, meta, err := experiment.New(cfg).Compare(cmd.Context(), nil)
	return reportCompare(result, meta, err)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	result, meta, err := automation.RunScenario(cmd.Context(), sc, cfg)
	return reportCompare(result, meta, err)
}

// reportCompare saves a comparison, prints its summary and fails when the
// solvers disagreed.
func reportCompare(result *sim.CompareResult, meta storage.RunMetadata, err error) error {
	if result == nil {
		return err
	}
	id, serr := storage.New(dataDir).Save(meta, result.Samples)
	if serr != nil {
		return serr
	}

	fmt.Printf("run %s: %d frames on %s\n", id, result.Frames, meta.Backend)
	fmt.Printf("  sequential  %.3f ms/step (p95 %.3f)\n", result.SequentialMs.Mean, result.SequentialMs.P95)
	fmt.Printf("  parallel    %.3f ms/step (p95 %.3f)\n", result.ParallelMs.Mean, result.ParallelMs.P95)
	fmt.Printf("  rmse        mean %.2e  max %.2e  tolerance %.0e\n", result.RMSE.Mean, result.RMSE.Max, result.Tolerance)

	if rmse, cerr := sim.Column(result.Samples, "rmse"); cerr == nil && len(rmse) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rmse, asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("rmse per frame")))
	}

	if err != nil {
		return err
	}
	if !result.Agree() {
		return fmt.Errorf("%w: %d of %d frames at or above %.0e", errDisagree, result.Violations, result.Frames, result.Tolerance)
	}
	fmt.Println("  solvers agree")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Param:       sweepParam,
		Min:         sweepMin,
		Max:         sweepMax,
		NumSteps:    sweepSteps,
		Concurrency: sweepWorkers,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX RMSE\tVIOLATIONS\tPEAK STRETCH\tSAG\n", sweepParam)
	failed := 0
	for _, r := range results {
		value := fmt.Sprintf("%.3g", r.Value)
		if r.Value != r.Requested {
			value += fmt.Sprintf(" (asked %.3g)", r.Requested)
		}
		fmt.Fprintf(w, "%s\t%.2e\t%d\t%.4f\t%.4f\n", value, r.RMSE.Max, r.Violations, r.PeakStretch, r.FinalSag)
		if !r.Agree() {
			failed++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w at %d of %d values", errDisagree, failed, len(results))
	}
	return nil
}

func benchSolvers(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sizes := []int{16, 35, 64}
	benchFrames := 120

	fmt.Printf("benchmarking %d frames at dt %.4f\n\n", benchFrames, base.Run.Dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tSOLVER\tBACKEND\tMEAN\tP95\tFRAMES/SEC")

	for _, n := range sizes {
		cfg := *base
		cfg.Grid.Rows, cfg.Grid.Cols = n, n
		cfg.Run.Frames = benchFrames

		e := experiment.New(&cfg)
		for _, name := range e.Registry().ListSolvers() {
			s, err := e.Registry().Build(name, &cfg)
			if err != nil {
				return err
			}
			result, err := sim.New(s).Run(cmd.Context(), sim.Config{Frames: cfg.Run.Frames, Dt: cfg.Run.Dt})
			backendName := experiment.BackendName(s)
			experiment.Close(s)
			if err != nil {
				return err
			}
			if backendName == "" {
				backendName = "-"
			}
			fps := 0.0
			if result.StepMs.Mean > 0 {
				fps = 1000 / result.StepMs.Mean
			}
			fmt.Fprintf(w, "%dx%d\t%s\t%s\t%.3fms\t%.3fms\t%.0f\n",
				n, n, name, backendName, result.StepMs.Mean, result.StepMs.P95, fps)
		}
	}
	return w.Flush()
}

func serveStream(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Built here so a GL backend binds to the locked main thread, which
	// also runs the stream loop.
	seq, par, err := experiment.New(cfg).Pair()
	if err != nil {
		return err
	}
	defer experiment.Close(seq, par)

	srv := stream.New([]dynamo.Solver{seq, par}, stream.Config{
		Dt:        cfg.Run.Dt,
		FrameRate: serveRate,
		Names:     []string{experiment.Sequential, experiment.Parallel},
		Backends:  []string{"", experiment.BackendName(par)},
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	httpSrv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
		cancel()
	}()
	fmt.Printf("streaming on %s (ws endpoint: /ws)\n", addr)

	runErr := srv.Run(ctx)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
