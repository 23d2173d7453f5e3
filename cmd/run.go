package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ahoffer/benchtab/internal/bench"
	"github.com/ahoffer/benchtab/internal/config"
	"github.com/ahoffer/benchtab/internal/export"
	"github.com/ahoffer/benchtab/internal/profiler"
	"github.com/ahoffer/benchtab/internal/result"
	"github.com/ahoffer/benchtab/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagBenchmark   string
	flagMeasurement int
	flagNoProfiler  bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute configured benchmarks and store the results",
		RunE:  runBenchmarks,
	}
	cmd.Flags().StringVar(&flagBenchmark, "benchmark", "", "filter to a single benchmark")
	cmd.Flags().IntVar(&flagMeasurement, "iterations", 0, "override measurement iteration count")
	cmd.Flags().BoolVar(&flagNoProfiler, "no-profiler", false, "disable the heap profiler for this run")
	return cmd
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagMeasurement > 0 {
		cfg.Iterations.Measurement = flagMeasurement
	}

	benchmarks := filterBenchmarks(cfg.Benchmarks, flagBenchmark)
	if len(benchmarks) == 0 {
		return fmt.Errorf("no benchmarks match %q", flagBenchmark)
	}

	specs, err := expandSpecs(benchmarks)
	if err != nil {
		return err
	}

	opts := runner.Options{
		Warmup:            cfg.Iterations.Warmup,
		Measurement:       cfg.Iterations.Measurement,
		IterationDuration: cfg.Iterations.Duration(),
	}
	if cfg.Profiler.Heap && !flagNoProfiler {
		opts.Sampler = profiler.NewHeapSampler(cfg.Profiler.InitialDelay(), cfg.Profiler.Period())
	}

	fmt.Printf("Running %d configurations, %d+%d iterations each\n",
		len(specs), cfg.Iterations.Warmup, cfg.Iterations.Measurement)
	runs, err := runner.Run(cmd.Context(), specs, opts)
	if err != nil {
		return err
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	set := result.NewRunSet(runs)
	if err := result.WriteRunSet(runDir, set); err != nil {
		return err
	}
	fmt.Printf("Run %s written to %s\n\n", set.ID, runDir)

	return export.Write(set, "table", os.Stdout)
}

func filterBenchmarks(benchmarks []config.Benchmark, name string) []config.Benchmark {
	if name == "" {
		return benchmarks
	}
	var out []config.Benchmark
	for _, b := range benchmarks {
		if b.Name == name {
			out = append(out, b)
		}
	}
	return out
}

// expandSpecs turns each configured benchmark into one runner spec per
// parameter combination.
func expandSpecs(benchmarks []config.Benchmark) ([]runner.Spec, error) {
	var specs []runner.Spec
	for _, b := range benchmarks {
		factory, err := bench.Lookup(b.Workload)
		if err != nil {
			return nil, fmt.Errorf("benchmark %q: %w", b.Name, err)
		}
		for _, params := range expandParams(b.Params) {
			specs = append(specs, runner.Spec{
				Name:    b.Name,
				Factory: factory,
				Mode:    result.Mode(b.Mode),
				Params:  params,
			})
		}
	}
	return specs, nil
}

// expandParams builds the cross product of every parameter's values,
// expanding keys in sorted order so the run order is reproducible. No
// parameters yields one empty combination.
func expandParams(params map[string][]string) []map[string]string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]string{{}}
	for _, key := range keys {
		var next []map[string]string
		for _, combo := range combos {
			for _, value := range params[key] {
				expanded := make(map[string]string, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[key] = strings.TrimSpace(value)
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
