package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/types"
)

// Performer directions.
const (
	DirectionOver  = "over"
	DirectionUnder = "under"
)

// Stats is the JSON view of the latest run.
type Stats struct {
	RunID       string            `json:"run_id"`
	RuleVersion string            `json:"rule_version"`
	CreatedAt   time.Time         `json:"created_at"`
	Duplicates  int               `json:"duplicates"`
	MinMinutes  int               `json:"min_minutes"`
	Short       int               `json:"short_appearances"`
	Summary     aggregate.Summary `json:"summary"`
}

// Stats returns the latest run's summary.
func (s *Service) Stats(_ context.Context) (Stats, error) {
	r, err := s.Latest()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		RunID:       r.RunID,
		RuleVersion: r.RuleVersion,
		CreatedAt:   r.CreatedAt,
		Duplicates:  r.Duplicates,
		MinMinutes:  r.MinMinutes,
		Short:       r.ShortAppearances,
		Summary:     r.Summary,
	}, nil
}

// Leaderboard ranks the latest results by metric.
func (s *Service) Leaderboard(_ context.Context, metric aggregate.Metric, limit int) ([]types.Entry, error) {
	r, err := s.Latest()
	if err != nil {
		return nil, err
	}
	top, err := aggregate.TopN(r.Results, metric, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(top))
	for i := range top {
		v, err := metric.Value(&top[i])
		if err != nil {
			return nil, err
		}
		out[i] = types.NewEntry(i+1, &top[i], v)
	}
	return out, nil
}

// Value ranks the latest results by expected base points per 90.
func (s *Service) Value(_ context.Context, limit int) ([]types.ValueEntry, error) {
	r, err := s.Latest()
	if err != nil {
		return nil, err
	}
	rows, err := aggregate.BestValue(r.Results, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.ValueEntry, len(rows))
	for i := range rows {
		rec := &rows[i].Result.Record
		out[i] = types.ValueEntry{
			Rank:              i + 1,
			PlayerName:        rec.PlayerName,
			Position:          rec.PositionName(),
			MinutesPlayed:     rec.MinutesPlayed,
			ActualBasePer90:   rows[i].ActualBasePer90,
			ExpectedBasePer90: rows[i].ExpectedBasePer90,
			ActualTotalPer90:  rows[i].ActualTotalPer90,
		}
	}
	return out, nil
}

// Positions returns the per-position breakdown of the latest run.
func (s *Service) Positions(_ context.Context) ([]aggregate.PositionSummary, error) {
	r, err := s.Latest()
	if err != nil {
		return nil, err
	}
	return r.Positions, nil
}

// Performers returns results whose actual base points beat (over) or trail
// (under) expectation by more than the configured tolerance.
func (s *Service) Performers(_ context.Context, direction string, limit int) ([]types.ResultView, error) {
	r, err := s.Latest()
	if err != nil {
		return nil, err
	}
	var picked []model.PointsResult
	switch direction {
	case DirectionOver:
		picked, err = aggregate.Overperformers(r.Results, s.tolerance, limit)
	case DirectionUnder:
		picked, err = aggregate.Underperformers(r.Results, s.tolerance, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}
	if err != nil {
		return nil, err
	}
	out := make([]types.ResultView, len(picked))
	for i := range picked {
		out[i] = types.NewResultView(&picked[i])
	}
	return out, nil
}
