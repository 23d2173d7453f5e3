//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahoffer/benchtab/internal/bench"
	"github.com/ahoffer/benchtab/internal/config"
	"github.com/ahoffer/benchtab/internal/export"
	"github.com/ahoffer/benchtab/internal/profiler"
	"github.com/ahoffer/benchtab/internal/result"
	"github.com/ahoffer/benchtab/internal/runner"
)

// TestRunStoreExport drives the whole pipeline: configured benchmarks
// measured with the heap profiler attached, results stored, reloaded,
// and exported as normalized CSV.
func TestRunStoreExport(t *testing.T) {
	base := t.TempDir()
	cfgPath := filepath.Join(base, "benchtab.yaml")
	cfgYAML := `
benchmarks:
  - name: alloc
    params:
      size: ["64", "4096"]
iterations:
  warmup: 1
  measurement: 2
  duration_ms: 50
profiler:
  heap: true
  initial_delay_ms: 1
  period_ms: 10
results:
  dir: ` + filepath.Join(base, "results") + `
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	factory, err := bench.Lookup("alloc")
	if err != nil {
		t.Fatal(err)
	}
	var specs []runner.Spec
	for _, size := range []string{"64", "4096"} {
		specs = append(specs, runner.Spec{
			Name:    "alloc",
			Factory: factory,
			Mode:    result.Throughput,
			Params:  map[string]string{"size": size},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	runs, err := runner.Run(ctx, specs, runner.Options{
		Warmup:            cfg.Iterations.Warmup,
		Measurement:       cfg.Iterations.Measurement,
		IterationDuration: cfg.Iterations.Duration(),
		Sampler:           profiler.NewHeapSampler(cfg.Profiler.InitialDelay(), cfg.Profiler.Period()),
	})
	if err != nil {
		t.Fatalf("running benchmarks: %v", err)
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		t.Fatal(err)
	}
	set := result.NewRunSet(runs)
	if err := result.WriteRunSet(runDir, set); err != nil {
		t.Fatal(err)
	}

	reloaded, err := result.ReadRunSet(runDir)
	if err != nil {
		t.Fatalf("reloading results: %v", err)
	}

	var buf bytes.Buffer
	if err := export.Write(reloaded, "csv", &buf); err != nil {
		t.Fatalf("exporting: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing CSV: %v", err)
	}
	// Header plus, for each of the two runs, one primary row and the
	// Heap-Avg/Heap-Max secondary rows.
	if len(records) != 1+2*3 {
		t.Fatalf("expected 7 records, got %d", len(records))
	}
	for i, rec := range records {
		if len(rec) != len(records[0]) {
			t.Errorf("record %d has %d fields, header has %d", i, len(rec), len(records[0]))
		}
	}
}
