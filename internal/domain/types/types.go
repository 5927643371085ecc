// Package types contains read shapes shared by the API and CLI output.
package types

import "github.com/okian/xpoints/internal/domain/model"

// Entry is one ranked row of a leaderboard.
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Position   string  `json:"position"`
	TeamCode   string  `json:"team_code"`
	MatchID    string  `json:"match_id"`
	Value      float64 `json:"value"`
}

// ResultView is the JSON form of a scored record.
type ResultView struct {
	PlayerName           string  `json:"player_name"`
	Position             string  `json:"position"`
	TeamCode             string  `json:"team_code"`
	MatchID              string  `json:"match_id"`
	MinutesPlayed        int     `json:"minutes_played"`
	ActualBasePoints     int     `json:"actual_base_points"`
	ExpectedBasePoints   float64 `json:"expected_base_points"`
	ActualTotalPoints    int     `json:"actual_total_points"`
	DefensivePoints      int     `json:"defensive_contributions_points"`
	BasePointsDifference float64 `json:"base_points_difference"`
	EstimatedBonusPoints int     `json:"estimated_bonus_points"`
}

// ValueEntry is a per-90 ranking row.
type ValueEntry struct {
	Rank              int     `json:"rank"`
	PlayerName        string  `json:"player_name"`
	Position          string  `json:"position"`
	MinutesPlayed     int     `json:"minutes_played"`
	ActualBasePer90   float64 `json:"actual_base_per_90"`
	ExpectedBasePer90 float64 `json:"expected_base_per_90"`
	ActualTotalPer90  float64 `json:"actual_total_per_90"`
}

// NewEntry builds a leaderboard entry for r.
func NewEntry(rank int, r *model.PointsResult, value float64) Entry {
	return Entry{
		Rank:       rank,
		PlayerName: r.Record.PlayerName,
		Position:   r.Record.PositionName(),
		TeamCode:   r.Record.TeamCode,
		MatchID:    r.Record.MatchID,
		Value:      value,
	}
}

// NewResultView flattens r for JSON output.
func NewResultView(r *model.PointsResult) ResultView {
	return ResultView{
		PlayerName:           r.Record.PlayerName,
		Position:             r.Record.PositionName(),
		TeamCode:             r.Record.TeamCode,
		MatchID:              r.Record.MatchID,
		MinutesPlayed:        r.Record.MinutesPlayed,
		ActualBasePoints:     r.ActualBasePoints,
		ExpectedBasePoints:   r.ExpectedBasePoints,
		ActualTotalPoints:    r.ActualTotalPoints,
		DefensivePoints:      r.DefensiveContributionPoints,
		BasePointsDifference: r.BasePointsDifference,
		EstimatedBonusPoints: r.EstimatedBonusPoints,
	}
}
