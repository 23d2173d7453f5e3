// Package normalize flattens heterogeneous run results into one
// rectangular table: one row per metric per run, one column per
// parameter observed anywhere in the collection, plus fixed metric
// columns. Runs that lack a secondary metric present in other runs get
// a placeholder row so every run covers the same metric set.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ahoffer/benchtab/internal/result"
)

var fixedColumns = []string{
	"Metric",
	"Sample Size",
	"Statistic Type",
	"Statistic Value",
	"Statistical Margin of Error",
	"Units",
}

// Table builds the normalized table for a run collection. An empty
// collection yields an empty table. A run missing a parameter that
// other runs define violates the input contract and fails the build.
func Table(runs []result.RunResult) (header []string, rows [][]string, err error) {
	if len(runs) == 0 {
		return nil, nil, nil
	}

	paramNames := unionParamNames(runs)
	secondaryNames := unionSecondaryNames(runs)

	for i := range runs {
		run := &runs[i]

		outs := []outcome{primaryOutcome(run)}

		written := make(map[string]bool, len(run.Secondary))
		for _, label := range sortedKeys(run.Secondary) {
			o := secondaryOutcome(run, run.Secondary[label])
			outs = append(outs, o)
			written[o.metricName] = true
		}
		for _, name := range secondaryNames {
			if !written[name] {
				outs = append(outs, missingOutcome(run, name))
			}
		}

		for _, o := range outs {
			row, err := o.row(paramNames)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)
		}
	}

	header = make([]string, 0, 1+len(paramNames)+len(fixedColumns))
	header = append(header, "Test")
	header = append(header, paramNames...)
	header = append(header, fixedColumns...)
	return header, rows, nil
}

// TrimPunctuation strips leading non-alphabetic characters from a
// metric label, so decorated labels like "·gc.count" normalize to a
// clean word. Interior punctuation is left alone, which makes the trim
// idempotent.
func TrimPunctuation(label string) string {
	return strings.TrimLeftFunc(label, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
}

// unionParamNames collects every parameter key observed across the
// collection, sorted so repeated exports of the same data agree on
// column order.
func unionParamNames(runs []result.RunResult) []string {
	seen := make(map[string]bool)
	for i := range runs {
		for name := range runs[i].Params {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unionSecondaryNames(runs []result.RunResult) []string {
	seen := make(map[string]bool)
	for i := range runs {
		for label := range runs[i].Secondary {
			seen[TrimPunctuation(label)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]result.Metric) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// outcome is one row-to-be: a (run, metric) pairing, or a placeholder
// for a metric the run did not record. Placeholders carry no metric.
type outcome struct {
	run        *result.RunResult
	metric     *result.Metric
	metricName string
}

func primaryOutcome(run *result.RunResult) outcome {
	// The primary row is named for what was measured (the mode), not
	// for the metric's own label; the label already serves as the test
	// name on every row of the run.
	return outcome{run: run, metric: &run.Primary, metricName: run.Mode.LongLabel()}
}

func secondaryOutcome(run *result.RunResult, m result.Metric) outcome {
	return outcome{run: run, metric: &m, metricName: TrimPunctuation(m.Label)}
}

func missingOutcome(run *result.RunResult, name string) outcome {
	return outcome{run: run, metricName: name}
}

func (o outcome) row(paramNames []string) ([]string, error) {
	row := make([]string, 0, 1+len(paramNames)+len(fixedColumns))
	row = append(row, o.run.Primary.Label)
	for _, name := range paramNames {
		value, ok := o.run.Params[name]
		if !ok {
			return nil, fmt.Errorf("run %q has no value for parameter %q present in other runs",
				o.run.Primary.Label, name)
		}
		row = append(row, value)
	}
	row = append(row, o.metricName)
	row = append(row, o.sampleSize(), o.statisticType(), o.statisticValue(), o.marginOfError(), o.units())
	return row, nil
}

func (o outcome) sampleSize() string {
	if o.metric == nil {
		return "0"
	}
	return strconv.Itoa(o.metric.SampleCount)
}

func (o outcome) statisticType() string {
	if o.metric == nil {
		return string(result.PolicyNone)
	}
	// An unset policy renders as an empty cell rather than failing the
	// whole export.
	return string(o.metric.Policy)
}

func (o outcome) statisticValue() string {
	if o.metric == nil {
		return "0"
	}
	return formatFloat(o.metric.Score)
}

func (o outcome) marginOfError() string {
	if o.metric == nil {
		return "NA"
	}
	return formatFloat(o.metric.ScoreError)
}

func (o outcome) units() string {
	if o.metric == nil {
		return "none"
	}
	return o.metric.Unit
}

// formatFloat renders NaN as an explicit sentinel so an undefined error
// margin can never be mistaken for a measured zero.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
