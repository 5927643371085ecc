package aggregate

import (
	"fmt"

	"github.com/okian/xpoints/internal/domain/model"
)

// Metric names a numeric field of a PointsResult.
type Metric string

// Rankable metrics. Names match the export columns.
const (
	MetricActualBase     Metric = "actual_base_points"
	MetricExpectedBase   Metric = "expected_base_points"
	MetricActualTotal    Metric = "actual_total_points"
	MetricDifference     Metric = "base_points_difference"
	MetricDefensive      Metric = "defensive_contributions_points"
	MetricBonus          Metric = "actual_bonus_points"
	MetricEstimatedBonus Metric = "estimated_bonus_points"
	MetricBPS            Metric = "bps_score"
	MetricMinutes        Metric = "minutes_played"
	MetricXG             Metric = "xg"
	MetricXA             Metric = "xa"
)

var metricValues = map[Metric]func(*model.PointsResult) float64{
	MetricActualBase:     func(r *model.PointsResult) float64 { return float64(r.ActualBasePoints) },
	MetricExpectedBase:   func(r *model.PointsResult) float64 { return r.ExpectedBasePoints },
	MetricActualTotal:    func(r *model.PointsResult) float64 { return float64(r.ActualTotalPoints) },
	MetricDifference:     func(r *model.PointsResult) float64 { return r.BasePointsDifference },
	MetricDefensive:      func(r *model.PointsResult) float64 { return float64(r.DefensiveContributionPoints) },
	MetricBonus:          func(r *model.PointsResult) float64 { return float64(r.Record.BonusOrZero()) },
	MetricEstimatedBonus: func(r *model.PointsResult) float64 { return float64(r.EstimatedBonusPoints) },
	MetricBPS:            func(r *model.PointsResult) float64 { return float64(r.Record.BPSOrZero()) },
	MetricMinutes:        func(r *model.PointsResult) float64 { return float64(r.Record.MinutesPlayed) },
	MetricXG:             func(r *model.PointsResult) float64 { return r.Record.XG },
	MetricXA:             func(r *model.PointsResult) float64 { return r.Record.XA },
}

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if _, ok := metricValues[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return m, nil
}

// Value returns the metric's value for r.
func (m Metric) Value(r *model.PointsResult) (float64, error) {
	fn, ok := metricValues[m]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
	}
	return fn(r), nil
}
