package result

import (
	"encoding/json"
	"math"
	"time"
)

// Role says what a metric contributes to its run.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleOmitted   Role = "omitted"
)

// AggregationPolicy tags a metric with how multiple same-labeled
// observations should later be combined. The metric carries the tag but
// never applies it; that belongs to whoever aggregates.
type AggregationPolicy string

const (
	PolicyAverage AggregationPolicy = "avg"
	PolicySum     AggregationPolicy = "sum"
	PolicyMax     AggregationPolicy = "max"
	PolicyMin     AggregationPolicy = "min"
	PolicyNone    AggregationPolicy = "none"
)

// Mode describes what a run's primary metric represents.
type Mode string

const (
	Throughput  Mode = "thrpt"
	AverageTime Mode = "avgt"
	SingleShot  Mode = "ss"
)

func (m Mode) ShortLabel() string { return string(m) }

func (m Mode) LongLabel() string {
	switch m {
	case Throughput:
		return "Throughput, ops/time"
	case AverageTime:
		return "Average time, time/op"
	case SingleShot:
		return "Single shot invocation time"
	default:
		return string(m)
	}
}

// Metric is one measured quantity. ScoreError is NaN when undefined
// (single-sample metrics).
type Metric struct {
	Label       string            `json:"label"`
	Role        Role              `json:"role"`
	SampleCount int               `json:"sample_count"`
	Score       float64           `json:"score"`
	ScoreError  float64           `json:"-"`
	Unit        string            `json:"unit"`
	Policy      AggregationPolicy `json:"policy"`
}

// metricJSON carries ScoreError as a pointer so a NaN round-trips as null.
type metricJSON struct {
	Label       string            `json:"label"`
	Role        Role              `json:"role"`
	SampleCount int               `json:"sample_count"`
	Score       float64           `json:"score"`
	ScoreError  *float64          `json:"score_error"`
	Unit        string            `json:"unit"`
	Policy      AggregationPolicy `json:"policy"`
}

func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{
		Label:       m.Label,
		Role:        m.Role,
		SampleCount: m.SampleCount,
		Score:       m.Score,
		Unit:        m.Unit,
		Policy:      m.Policy,
	}
	if !math.IsNaN(m.ScoreError) {
		e := m.ScoreError
		out.ScoreError = &e
	}
	return json.Marshal(out)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var in metricJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Label = in.Label
	m.Role = in.Role
	m.SampleCount = in.SampleCount
	m.Score = in.Score
	m.Unit = in.Unit
	m.Policy = in.Policy
	if in.ScoreError != nil {
		m.ScoreError = *in.ScoreError
	} else {
		m.ScoreError = math.NaN()
	}
	return nil
}

// NewScalar builds a single-observation secondary metric, the shape
// profilers emit. Score error is undefined for a single sample.
func NewScalar(label string, value float64, unit string, policy AggregationPolicy) Metric {
	return Metric{
		Label:       label,
		Role:        RoleSecondary,
		SampleCount: 1,
		Score:       value,
		ScoreError:  math.NaN(),
		Unit:        unit,
		Policy:      policy,
	}
}

// RunResult is one measured configuration: its parameter values, the
// mode its primary metric was measured under, the primary metric, and
// any secondary metrics keyed by label.
type RunResult struct {
	Params    map[string]string `json:"params,omitempty"`
	Mode      Mode              `json:"mode"`
	Primary   Metric            `json:"primary"`
	Secondary map[string]Metric `json:"secondary,omitempty"`
}

// RunSet is the stored output of one harness invocation.
type RunSet struct {
	ID      string      `json:"id"`
	Created time.Time   `json:"created"`
	Runs    []RunResult `json:"runs"`
}
