package result_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ahoffer/benchtab/internal/result"
)

func TestRunSetRoundTrip(t *testing.T) {
	base := t.TempDir()
	runDir := filepath.Join(base, "runs", "test-run")

	set := result.NewRunSet([]result.RunResult{
		{
			Params: map[string]string{"size": "10"},
			Mode:   result.Throughput,
			Primary: result.Metric{
				Label: "alloc", Role: result.RolePrimary, SampleCount: 5,
				Score: 1234.5, ScoreError: math.NaN(), Unit: "ops/s",
				Policy: result.PolicyAverage,
			},
			Secondary: map[string]result.Metric{
				"Heap-Avg": result.NewScalar("Heap-Avg", 2048, "bytes", result.PolicyAverage),
			},
		},
	})
	if set.ID == "" {
		t.Fatal("NewRunSet assigned no ID")
	}

	if err := result.WriteRunSet(runDir, set); err != nil {
		t.Fatalf("WriteRunSet: %v", err)
	}
	got, err := result.ReadRunSet(runDir)
	if err != nil {
		t.Fatalf("ReadRunSet: %v", err)
	}
	if got.ID != set.ID {
		t.Errorf("ID = %q, want %q", got.ID, set.ID)
	}
	if len(got.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got.Runs))
	}
	run := got.Runs[0]
	if !math.IsNaN(run.Primary.ScoreError) {
		t.Errorf("primary score error = %v, want NaN preserved", run.Primary.ScoreError)
	}
	if run.Secondary["Heap-Avg"].Score != 2048 {
		t.Errorf("secondary score = %v, want 2048", run.Secondary["Heap-Avg"].Score)
	}
}

func TestCreateRunDir(t *testing.T) {
	base := t.TempDir()
	runDir, err := result.CreateRunDir(base)
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	if _, err := os.Stat(runDir); err != nil {
		t.Errorf("run dir not created: %v", err)
	}
	latest, err := os.Readlink(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatalf("latest symlink: %v", err)
	}
	if latest != runDir {
		t.Errorf("latest points at %q, want %q", latest, runDir)
	}
}

func TestReadRunSetMissing(t *testing.T) {
	if _, err := result.ReadRunSet(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing results file")
	}
}
