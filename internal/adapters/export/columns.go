// Package export writes scored rows to files, object stores and SQL tables.
//
// Every sink uses the same column list in the same order. Integer counts are
// written as integers and floats in their shortest form. Nullable record
// fields with no value are written as empty cells.
package export

import (
	"strconv"

	"github.com/okian/xpoints/internal/domain/model"
)

// Columns is the stable export header.
var Columns = []string{
	"player_name",
	"position",
	"team_code",
	"match_id",
	"minutes_played",
	"goals",
	"assists",
	"xg",
	"xa",
	"saves",
	"team_goals_conceded",
	"clearances",
	"blocks",
	"interceptions",
	"tackles_won",
	"recoveries",
	"defensive_contributions_points",
	"actual_bonus_points",
	"bps_score",
	"fpl_total_points",
	"actual_base_points",
	"expected_base_points",
	"actual_total_points",
	"base_points_difference",
}

// Header returns a copy of Columns.
func Header() []string {
	out := make([]string, len(Columns))
	copy(out, Columns)
	return out
}

// Row formats r in Columns order.
func Row(r *model.PointsResult) []string {
	rec := &r.Record
	return []string{
		rec.PlayerName,
		rec.PositionName(),
		rec.TeamCode,
		rec.MatchID,
		itoa(rec.MinutesPlayed),
		itoa(rec.Goals),
		itoa(rec.Assists),
		ftoa(rec.XG),
		ftoa(rec.XA),
		itoa(rec.Saves),
		itoa(rec.TeamGoalsConceded),
		itoa(rec.Clearances),
		itoa(rec.Blocks),
		itoa(rec.Interceptions),
		itoa(rec.TacklesWon),
		itoa(rec.Recoveries),
		itoa(r.DefensiveContributionPoints),
		nullable(rec.Bonus),
		nullable(rec.BPS),
		nullable(rec.EventPoints),
		itoa(r.ActualBasePoints),
		ftoa(r.ExpectedBasePoints),
		itoa(r.ActualTotalPoints),
		ftoa(r.BasePointsDifference),
	}
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func nullable(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
