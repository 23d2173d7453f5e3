package runner_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ahoffer/benchtab/internal/bench"
	"github.com/ahoffer/benchtab/internal/profiler"
	"github.com/ahoffer/benchtab/internal/result"
	"github.com/ahoffer/benchtab/internal/runner"
)

func countingFactory(calls *int) bench.Factory {
	return func(params map[string]string) (bench.Op, error) {
		return func() error {
			*calls++
			return nil
		}, nil
	}
}

func TestRunProducesOneResultPerSpec(t *testing.T) {
	var calls int
	specs := []runner.Spec{
		{Name: "a", Factory: countingFactory(&calls), Mode: result.Throughput, Params: map[string]string{"size": "1"}},
		{Name: "b", Factory: countingFactory(&calls), Mode: result.AverageTime, Params: map[string]string{"size": "2"}},
	}
	opts := runner.Options{Warmup: 1, Measurement: 3, IterationDuration: time.Millisecond}

	runs, err := runner.Run(context.Background(), specs, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(runs))
	}
	if calls == 0 {
		t.Fatal("workload never invoked")
	}

	first := runs[0]
	if first.Primary.Label != "a" || first.Primary.Role != result.RolePrimary {
		t.Errorf("primary = %+v, want label a, role primary", first.Primary)
	}
	if first.Primary.SampleCount != 3 {
		t.Errorf("sample count = %d, want measurement iteration count 3", first.Primary.SampleCount)
	}
	if first.Primary.Unit != "ops/s" {
		t.Errorf("thrpt unit = %q, want ops/s", first.Primary.Unit)
	}
	if first.Primary.Score <= 0 {
		t.Errorf("thrpt score = %v, want positive", first.Primary.Score)
	}
	if runs[1].Primary.Unit != "ns/op" {
		t.Errorf("avgt unit = %q, want ns/op", runs[1].Primary.Unit)
	}
	if first.Params["size"] != "1" {
		t.Errorf("params not carried through: %v", first.Params)
	}
}

func TestRunSingleShotMargin(t *testing.T) {
	var calls int
	specs := []runner.Spec{
		{Name: "ss", Factory: countingFactory(&calls), Mode: result.SingleShot},
	}
	opts := runner.Options{Measurement: 1, IterationDuration: time.Millisecond}

	runs, err := runner.Run(context.Background(), specs, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 {
		t.Errorf("single shot invoked %d times, want 1", calls)
	}
	if !math.IsNaN(runs[0].Primary.ScoreError) {
		t.Errorf("margin with one iteration = %v, want NaN", runs[0].Primary.ScoreError)
	}
}

func TestRunAttachesHeapMetrics(t *testing.T) {
	var calls int
	specs := []runner.Spec{
		{Name: "a", Factory: countingFactory(&calls), Mode: result.Throughput},
	}
	opts := runner.Options{
		Measurement:       2,
		IterationDuration: 30 * time.Millisecond,
		Sampler:           profiler.NewHeapSampler(time.Millisecond, 5*time.Millisecond),
	}

	runs, err := runner.Run(context.Background(), specs, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sec := runs[0].Secondary
	for _, label := range []string{"Heap-Avg", "Heap-Max"} {
		m, ok := sec[label]
		if !ok {
			t.Fatalf("no %s secondary metric: %v", label, sec)
		}
		if m.SampleCount < 2 {
			t.Errorf("%s aggregated %d observations, want samples from both iterations", label, m.SampleCount)
		}
	}
	if sec["Heap-Max"].Score < sec["Heap-Avg"].Score {
		t.Errorf("heap max %v below heap avg %v", sec["Heap-Max"].Score, sec["Heap-Avg"].Score)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	specs := []runner.Spec{
		{Name: "a", Factory: countingFactory(&calls), Mode: result.Throughput},
	}
	_, err := runner.Run(ctx, specs, runner.Options{Measurement: 1, IterationDuration: time.Millisecond})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestAggregateScalars(t *testing.T) {
	scalars := []result.Metric{
		result.NewScalar("avg", 1, "u", result.PolicyAverage),
		result.NewScalar("avg", 3, "u", result.PolicyAverage),
		result.NewScalar("max", 1, "u", result.PolicyMax),
		result.NewScalar("max", 5, "u", result.PolicyMax),
		result.NewScalar("min", 2, "u", result.PolicyMin),
		result.NewScalar("min", 7, "u", result.PolicyMin),
		result.NewScalar("sum", 2, "u", result.PolicySum),
		result.NewScalar("sum", 3, "u", result.PolicySum),
	}

	out := runner.AggregateScalars(scalars)
	tests := []struct {
		label string
		want  float64
	}{
		{"avg", 2},
		{"max", 5},
		{"min", 2},
		{"sum", 5},
	}
	for _, tt := range tests {
		m, ok := out[tt.label]
		if !ok {
			t.Errorf("no aggregate for %q", tt.label)
			continue
		}
		if m.Score != tt.want {
			t.Errorf("%s aggregate = %v, want %v", tt.label, m.Score, tt.want)
		}
		if m.SampleCount != 2 {
			t.Errorf("%s sample count = %d, want 2", tt.label, m.SampleCount)
		}
		if !math.IsNaN(m.ScoreError) {
			t.Errorf("%s score error = %v, want NaN", tt.label, m.ScoreError)
		}
	}

	if got := runner.AggregateScalars(nil); got != nil {
		t.Errorf("AggregateScalars(nil) = %v, want nil", got)
	}
}
