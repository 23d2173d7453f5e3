// Package runner drives benchmark iterations: warmups, timed
// measurement iterations, and the profiler lifecycle around each
// measurement iteration.
package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ahoffer/benchtab/internal/bench"
	"github.com/ahoffer/benchtab/internal/profiler"
	"github.com/ahoffer/benchtab/internal/result"
)

// Spec is one fully expanded configuration to measure: a workload plus
// one concrete parameter combination.
type Spec struct {
	Name    string
	Factory bench.Factory
	Mode    result.Mode
	Params  map[string]string
}

type Options struct {
	Warmup            int
	Measurement       int
	IterationDuration time.Duration
	// Sampler, when set, is started at the beginning of every
	// measurement iteration and stopped at its end; the collected
	// observations become secondary metrics on the run.
	Sampler *profiler.HeapSampler
}

// Run measures each spec in order and returns one RunResult per spec.
// Specs run serially: concurrent measurement would perturb the numbers
// being measured.
func Run(ctx context.Context, specs []Spec, opts Options) ([]result.RunResult, error) {
	results := make([]result.RunResult, 0, len(specs))
	for _, spec := range specs {
		run, err := runOne(ctx, spec, opts)
		if err != nil {
			return nil, fmt.Errorf("benchmark %q: %w", spec.Name, err)
		}
		results = append(results, run)
	}
	return results, nil
}

func runOne(ctx context.Context, spec Spec, opts Options) (result.RunResult, error) {
	op, err := spec.Factory(spec.Params)
	if err != nil {
		return result.RunResult{}, err
	}

	for i := 0; i < opts.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return result.RunResult{}, err
		}
		if _, _, err := measureIteration(spec.Mode, op, opts.IterationDuration); err != nil {
			return result.RunResult{}, err
		}
	}

	scores := make([]float64, 0, opts.Measurement)
	var scalars []result.Metric
	for i := 0; i < opts.Measurement; i++ {
		if err := ctx.Err(); err != nil {
			return result.RunResult{}, err
		}
		if opts.Sampler != nil {
			opts.Sampler.Start()
		}
		ops, elapsed, err := measureIteration(spec.Mode, op, opts.IterationDuration)
		if opts.Sampler != nil {
			scalars = append(scalars, opts.Sampler.Stop()...)
		}
		if err != nil {
			return result.RunResult{}, err
		}
		scores = append(scores, score(spec.Mode, ops, elapsed))
	}

	mean, margin := meanAndMargin(scores)
	return result.RunResult{
		Params: spec.Params,
		Mode:   spec.Mode,
		Primary: result.Metric{
			Label:       spec.Name,
			Role:        result.RolePrimary,
			SampleCount: len(scores),
			Score:       mean,
			ScoreError:  margin,
			Unit:        scoreUnit(spec.Mode),
			Policy:      result.PolicyAverage,
		},
		Secondary: AggregateScalars(scalars),
	}, nil
}

// measureIteration invokes op repeatedly until the iteration duration
// is spent, or exactly once in single-shot mode.
func measureIteration(mode result.Mode, op bench.Op, duration time.Duration) (ops int, elapsed time.Duration, err error) {
	start := time.Now()
	for {
		if err := op(); err != nil {
			return 0, 0, err
		}
		ops++
		elapsed = time.Since(start)
		if mode == result.SingleShot || elapsed >= duration {
			return ops, elapsed, nil
		}
	}
}

func score(mode result.Mode, ops int, elapsed time.Duration) float64 {
	switch mode {
	case result.AverageTime:
		return float64(elapsed.Nanoseconds()) / float64(ops)
	case result.SingleShot:
		return float64(elapsed.Nanoseconds())
	default:
		return float64(ops) / elapsed.Seconds()
	}
}

func scoreUnit(mode result.Mode) string {
	switch mode {
	case result.AverageTime:
		return "ns/op"
	case result.SingleShot:
		return "ns"
	default:
		return "ops/s"
	}
}

// meanAndMargin reduces iteration scores to a mean and a
// normal-approximation half-interval. With fewer than two samples the
// margin is undefined, not zero.
func meanAndMargin(scores []float64) (mean, margin float64) {
	if len(scores) == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))
	if len(scores) < 2 {
		return mean, math.NaN()
	}
	var sq float64
	for _, s := range scores {
		d := s - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(scores)-1))
	margin = 2.576 * stddev / math.Sqrt(float64(len(scores)))
	return mean, margin
}

// AggregateScalars reduces same-labeled scalar observations per their
// aggregation-policy tag into one secondary metric per label. This is
// the downstream step the profiler defers its reduction to.
func AggregateScalars(scalars []result.Metric) map[string]result.Metric {
	if len(scalars) == 0 {
		return nil
	}
	grouped := make(map[string][]result.Metric)
	for _, s := range scalars {
		grouped[s.Label] = append(grouped[s.Label], s)
	}
	out := make(map[string]result.Metric, len(grouped))
	for label, group := range grouped {
		out[label] = reduce(label, group)
	}
	return out
}

func reduce(label string, group []result.Metric) result.Metric {
	value := group[0].Score
	var sum float64
	for _, m := range group {
		sum += m.Score
		switch group[0].Policy {
		case result.PolicyMax:
			value = math.Max(value, m.Score)
		case result.PolicyMin:
			value = math.Min(value, m.Score)
		}
	}
	switch group[0].Policy {
	case result.PolicyAverage:
		value = sum / float64(len(group))
	case result.PolicySum:
		value = sum
	}
	return result.Metric{
		Label:       label,
		Role:        result.RoleSecondary,
		SampleCount: len(group),
		Score:       value,
		ScoreError:  math.NaN(),
		Unit:        group[0].Unit,
		Policy:      group[0].Policy,
	}
}
