package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothlab/internal/optim"
)

var (
	tuneGrid    []string
	tuneMetric  string
	tuneSolver  string
	tuneWorkers int
)

// parseGrid turns "stiffness=100,400,800" entries into names and values.
func parseGrid(entries []string) ([]string, [][]float32, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float32, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad grid %q, want name=v1,v2,...", entry)
		}
		var values []float32
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, float32(v))
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneGrid)
	if err != nil {
		return err
	}

	search := optim.NewGridSearch(names, ranges)
	search.Solver = tuneSolver
	search.Concurrency = tuneWorkers

	best, all, err := search.Search(cmd.Context(), cfg, tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(tuneMetric))
	for _, c := range all {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", c.Params[name])
		}
		fmt.Fprintf(w, "%.5f\n", c.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s %.5f at", tuneMetric, best.Value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Println()
	return nil
}
