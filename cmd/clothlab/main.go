package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	rows    int
	cols    int
	spacing float32
	backend string
	frames  int
	dt      float32

	paramFlags = map[string]*float32{}
)

// paramFlagNames maps command-line flag names to solver parameter names.
var paramFlagNames = map[string]string{
	"stiffness":      dynamo.ParamStiffness,
	"damping":        dynamo.ParamDamping,
	"spring-damping": dynamo.ParamSpringDamping,
	"gravity":        dynamo.ParamGravityScale,
	"wind":           dynamo.ParamWindStrength,
}

// The OpenGL compute context is opened lazily by the first backend lookup
// and stays current on that thread; keep main on one OS thread so every
// command runs its solvers there.
func init() {
	runtime.LockOSThread()
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "clothlab",
		Short:        "cloth mass-spring simulation lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".clothlab", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset parameters")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	pf.IntVar(&rows, "rows", config.DefaultRows, "grid rows")
	pf.IntVar(&cols, "cols", config.DefaultCols, "grid columns")
	pf.Float32Var(&spacing, "spacing", config.DefaultSpacing, "rest spacing between particles")
	pf.StringVar(&backend, "backend", "auto", "parallel backend (auto, cpu, opengl)")
	pf.IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	pf.Float32Var(&dt, "dt", config.DefaultDt, "frame timestep in seconds")
	for flag, param := range paramFlagNames {
		paramFlags[flag] = new(float32)
		pf.Float32Var(paramFlags[flag], flag, 0, "initial "+param)
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view of both solvers",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", "linen", "color theme")
	rootCmd.Flags().AddFlagSet(liveCmd.Flags())

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one solver and save its trace",
		RunE:  runSolver,
	}
	runCmd.Flags().StringVar(&solverName, "solver", "sequential", "solver to run")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the cloth while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "redraw rate with --watch")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final frame as SVG to this file")
	runCmd.Flags().StringVar(&theme, "theme", "linen", "color theme for --svg")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "step the sequential and parallel solvers side by side",
		RunE:  compareSolvers,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "compare both solvers under a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare both solvers across a parameter range",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", dynamo.ParamStiffness, "parameter to sweep")
	sweepCmd.Flags().Float32Var(&sweepMin, "min", 100, "first value")
	sweepCmd.Flags().Float32Var(&sweepMax, "max", 1000, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "comparisons run at once (0 = one per CPU)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time both solvers across grid sizes",
		RunE:  benchSolvers,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream both solvers over websockets",
		RunE:  serveStream,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveRate, "fps", 60, "steps per second")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "search parameter combinations for the smallest run metric",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", []string{"stiffness=100,250,500,1000"}, "parameter values as name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "peak_stretch", "metric to minimize (peak_stretch, sag, ground_contact)")
	tuneCmd.Flags().StringVar(&tuneSolver, "solver", "sequential", "solver to run")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 0, "runs at once (0 = one per CPU)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trace columns of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotFields, "field", []string{"center_y", "max_stretch", "rmse"}, "trace columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sway frequency analysis of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeField, "field", "center_x", "trace column to analyze")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run with its trace as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	kernelCmd := &cobra.Command{
		Use:   "kernel",
		Short: "write the substep kernel as SPIR-V",
		RunE:  writeKernel,
	}
	kernelCmd.Flags().StringVarP(&kernelOut, "out", "o", "cloth_step.spv", "output file")
	kernelCmd.Flags().BoolVar(&kernelWGSL, "wgsl", false, "print the WGSL source instead")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, compareCmd, scenarioCmd, sweepCmd, tuneCmd, benchCmd, serveCmd,
		listCmd, plotCmd, analyzeCmd, exportCmd, kernelCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	compute.CloseContext()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: the --config file or --preset,
// else the defaults, then any flags given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	f := cmd.Flags()
	if f.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if f.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if f.Changed("spacing") {
		cfg.Grid.Spacing = spacing
	}
	if f.Changed("backend") {
		cfg.Backend = backend
	}
	if f.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if f.Changed("dt") {
		cfg.Run.Dt = dt
	}
	for flag, param := range paramFlagNames {
		if f.Changed(flag) {
			cfg.Params.Set(param, *paramFlags[flag])
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
