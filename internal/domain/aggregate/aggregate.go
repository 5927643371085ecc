// Package aggregate builds ranking and summary views over a scored batch.
// Every function reads its input without modifying it and returns new slices.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/xpoints/internal/domain/model"
)

// DefaultTolerance is the band around zero inside which a base points
// difference is treated as noise.
const DefaultTolerance = 0.5

// DefaultMinMinutes is the usual cut applied before per-90 views.
const DefaultMinMinutes = 30

const perMatchMinutes = 90

// TopN returns the n results with the highest metric value. Ties keep batch
// order. n larger than the batch returns the whole batch sorted.
func TopN(results []model.PointsResult, metric Metric, n int) ([]model.PointsResult, error) {
	if n < 0 {
		return nil, ErrInvalidLimit
	}
	fn, ok := metricValues[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, string(metric))
	}

	out := make([]model.PointsResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return fn(&out[i]) > fn(&out[j])
	})
	return out[:min(n, len(out))], nil
}

// Per90 scales value to a 90-minute rate.
func Per90(value float64, minutes int) (float64, error) {
	if minutes <= 0 {
		return 0, ErrZeroMinutes
	}
	return value / float64(minutes) * perMatchMinutes, nil
}

// ValueRow is a result with its per-90 rates.
type ValueRow struct {
	Result            model.PointsResult
	ActualBasePer90   float64
	ExpectedBasePer90 float64
	ActualTotalPer90  float64
}

// BestValue ranks results by expected base points per 90 and returns the top n.
// Results without minutes have no rate and are skipped.
func BestValue(results []model.PointsResult, n int) ([]ValueRow, error) {
	if n < 0 {
		return nil, ErrInvalidLimit
	}
	rows := make([]ValueRow, 0, len(results))
	for i := range results {
		r := results[i]
		mins := r.Record.MinutesPlayed
		expected, err := Per90(r.ExpectedBasePoints, mins)
		if err != nil {
			continue
		}
		actual, _ := Per90(float64(r.ActualBasePoints), mins)
		total, _ := Per90(float64(r.ActualTotalPoints), mins)
		rows = append(rows, ValueRow{
			Result:            r,
			ActualBasePer90:   actual,
			ExpectedBasePer90: expected,
			ActualTotalPer90:  total,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ExpectedBasePer90 > rows[j].ExpectedBasePer90
	})
	return rows[:min(n, len(rows))], nil
}

// FilterMinMinutes keeps results with at least minMinutes played.
func FilterMinMinutes(results []model.PointsResult, minMinutes int) []model.PointsResult {
	out := make([]model.PointsResult, 0, len(results))
	for i := range results {
		if results[i].Record.MinutesPlayed >= minMinutes {
			out = append(out, results[i])
		}
	}
	return out
}

// Stats summarises one metric over a group.
type Stats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"` // sample standard deviation, 0 below two values
}

// PositionSummary is the grouped view for one position label.
type PositionSummary struct {
	Position     string  `json:"position"`
	Count        int     `json:"count"`
	MinutesMean  float64 `json:"minutes_mean"`
	ActualBase   Stats   `json:"actual_base_points"`
	ExpectedBase Stats   `json:"expected_base_points"`
	ActualTotal  Stats   `json:"actual_total_points"`
}

// ByPosition groups results by position label, ordered by label.
func ByPosition(results []model.PointsResult) []PositionSummary {
	type group struct {
		minutes, actual, expected, total []float64
	}
	groups := make(map[string]*group)
	for i := range results {
		r := &results[i]
		label := r.Record.PositionName()
		g, ok := groups[label]
		if !ok {
			g = &group{}
			groups[label] = g
		}
		g.minutes = append(g.minutes, float64(r.Record.MinutesPlayed))
		g.actual = append(g.actual, float64(r.ActualBasePoints))
		g.expected = append(g.expected, r.ExpectedBasePoints)
		g.total = append(g.total, float64(r.ActualTotalPoints))
	}

	out := make([]PositionSummary, 0, len(groups))
	for label, g := range groups {
		out = append(out, PositionSummary{
			Position:     label,
			Count:        len(g.actual),
			MinutesMean:  describe(g.minutes).Mean,
			ActualBase:   describe(g.actual),
			ExpectedBase: describe(g.expected),
			ActualTotal:  describe(g.total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func describe(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	sum, maxVal := 0.0, math.Inf(-1)
	for _, v := range vals {
		sum += v
		maxVal = math.Max(maxVal, v)
	}
	mean := sum / float64(len(vals))
	s := Stats{Mean: mean, Max: maxVal}
	if len(vals) < 2 {
		return s
	}
	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	s.Std = math.Sqrt(sq / float64(len(vals)-1))
	return s
}

// Overperformers returns results whose actual base beat expected by more than
// tol, largest gap first.
func Overperformers(results []model.PointsResult, tol float64, n int) ([]model.PointsResult, error) {
	return performers(results, n, func(d float64) bool { return d > tol })
}

// Underperformers returns results whose actual base fell short of expected by
// more than tol, largest gap first.
func Underperformers(results []model.PointsResult, tol float64, n int) ([]model.PointsResult, error) {
	return performers(results, n, func(d float64) bool { return d < -tol })
}

func performers(results []model.PointsResult, n int, keep func(float64) bool) ([]model.PointsResult, error) {
	if n < 0 {
		return nil, ErrInvalidLimit
	}
	out := make([]model.PointsResult, 0)
	for i := range results {
		if keep(results[i].BasePointsDifference) {
			out = append(out, results[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].BasePointsDifference) > math.Abs(out[j].BasePointsDifference)
	})
	return out[:min(n, len(out))], nil
}

// Summary holds batch-wide totals and averages.
type Summary struct {
	Records               int     `json:"records"`
	Players               int     `json:"players"`
	Matches               int     `json:"matches"`
	TotalActualBase       int     `json:"total_actual_base_points"`
	TotalExpectedBase     float64 `json:"total_expected_base_points"`
	AvgActualBase         float64 `json:"avg_actual_base_points"`
	AvgExpectedBase       float64 `json:"avg_expected_base_points"`
	AvgActualTotal        float64 `json:"avg_actual_total_points"`
	AvgBonus              float64 `json:"avg_actual_bonus_points"`
	AvgEstimatedBonus     float64 `json:"avg_estimated_bonus_points"`
	DefensiveContributors int     `json:"defensive_contributors"`
}

// Summarize computes the batch summary. An empty batch yields zeros.
func Summarize(results []model.PointsResult) Summary {
	s := Summary{Records: len(results)}
	if len(results) == 0 {
		return s
	}
	players := make(map[string]struct{})
	matches := make(map[string]struct{})
	var total, bonusSum, estSum int
	for i := range results {
		r := &results[i]
		players[playerKey(&r.Record)] = struct{}{}
		matches[r.Record.MatchID] = struct{}{}
		s.TotalActualBase += r.ActualBasePoints
		s.TotalExpectedBase += r.ExpectedBasePoints
		total += r.ActualTotalPoints
		bonusSum += r.Record.BonusOrZero()
		estSum += r.EstimatedBonusPoints
		if r.DefensiveContributionPoints > 0 {
			s.DefensiveContributors++
		}
	}
	n := float64(len(results))
	s.Players = len(players)
	s.Matches = len(matches)
	s.AvgActualBase = float64(s.TotalActualBase) / n
	s.AvgExpectedBase = s.TotalExpectedBase / n
	s.AvgActualTotal = float64(total) / n
	s.AvgBonus = float64(bonusSum) / n
	s.AvgEstimatedBonus = float64(estSum) / n
	return s
}

func playerKey(rec *model.PlayerMatchRecord) string {
	if rec.PlayerID != 0 {
		return fmt.Sprintf("id:%d", rec.PlayerID)
	}
	return "name:" + rec.PlayerName
}
