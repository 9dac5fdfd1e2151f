package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothlab/internal/analysis"
	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/config"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/sim"
	"github.com/san-kum/clothlab/internal/storage"
)

var (
	plotFields   []string
	analyzeField string
	kernelOut    string
	kernelWGSL   bool
)

// resolveRun loads the run named by args, or the latest run.
func resolveRun(st *storage.Store, args []string) (*storage.RunMetadata, error) {
	if len(args) == 0 {
		return st.Latest()
	}
	return st.Load(args[0])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tGRID\tFRAMES\tBACKEND\tRESULT")

	for _, run := range runs {
		outcome := "-"
		if run.Compare != nil {
			outcome = "agree"
			if !run.Compare.Agree() {
				outcome = fmt.Sprintf("%d violations", run.Compare.Violations)
			}
		}
		name := run.Kind
		if run.Scenario != "" {
			name += ":" + run.Scenario
		}
		backendName := run.Backend
		if backendName == "" {
			backendName = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%s\t%s\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			run.Frames,
			backendName,
			outcome,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples to plot", meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, field := range plotFields {
		data, err := sim.Column(samples, field)
		if err != nil {
			return fmt.Errorf("%w (have %v)", err, sim.SampleFields())
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(field+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}
	data, err := sim.Column(samples, analyzeField)
	if err != nil {
		return err
	}
	if len(data) < 4 || !(meta.Dt > 0) {
		return fmt.Errorf("run %s: not enough data", meta.ID)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("field: %s\n\n", analyzeField)

	rate := 1 / float64(meta.Dt)
	ps := analysis.PowerSpectrum(data, rate)

	// Plot the low quarter of the band only.
	plotData := ps.Power[:max(2, len(ps.Power)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+analyzeField+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	if freq, _, ok := analysis.DominantFrequency(ps); ok {
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		fmt.Printf("period: %.3f s\n", 1/freq)
	} else {
		fmt.Println("no dominant frequency")
	}
	if period, ok, err := analysis.SwayPeriod(samples, analyzeField); err == nil && ok {
		fmt.Printf("mean crossing period: %.3f s\n", period)
	}

	if portrait, err := analysis.NewPortrait(samples, "center_x", "center_y"); err == nil {
		fmt.Println()
		fmt.Print(portrait.ASCII(60, 16))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	return st.ExportJSON(os.Stdout, meta.ID)
}

func writeKernel(cmd *cobra.Command, args []string) error {
	if kernelWGSL {
		fmt.Print(compute.KernelWGSL())
		return nil
	}
	words, err := compute.CompileKernelSPIRV()
	if err != nil {
		return err
	}
	if err := os.WriteFile(kernelOut, compute.SPIRVBytes(words), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d words)\n", kernelOut, len(words))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTIFFNESS\tDAMPING\tSPRING DAMPING\tGRAVITY\tWIND")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n",
			name, p.Stiffness, p.Damping, p.SpringDamping, p.GravityScale, p.WindStrength)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nparameters: %v\n", dynamo.ParamNames())
	return nil
}
