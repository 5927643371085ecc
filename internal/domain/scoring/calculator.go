// Package scoring turns one player-match record into fantasy points.
//
// Actual and expected points run through the same step sequence. They differ
// only in the goal and assist inputs: realized counts for actual points, xG and
// xA for expected points. Every other step uses realized values in both modes.
// All functions are pure.
package scoring

import (
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
)

const (
	fullMatchMinutes   = 60
	concededPerPenalty = 2
)

type points interface {
	~int | ~float64
}

// basePoints applies the shared scoring steps with goals and assists supplied
// by the caller.
func basePoints[T points](rec *model.PlayerMatchRecord, rs rules.RuleSet, goals, assists T) T {
	var total T
	mins := rec.MinutesPlayed

	if mins >= 1 {
		total += T(rs.Appearance)
	}
	if mins >= fullMatchMinutes {
		total += T(rs.Played60MinTotal - rs.Appearance)
	}

	if goals > 0 {
		total += goals * T(rs.GoalPoints(rec.Position))
	}
	if assists > 0 {
		total += assists * T(rs.Assist)
	}

	if rec.TeamGoalsConceded == 0 && mins >= fullMatchMinutes {
		total += T(rs.CleanSheetPoints(rec.Position))
	}

	if rec.Position == model.PositionGoalkeeper && mins >= 1 && rs.SavesPerPoint > 0 {
		total += T(rec.Saves / rs.SavesPerPoint)
	}

	if (rec.Position == model.PositionGoalkeeper || rec.Position == model.PositionDefender) && mins >= fullMatchMinutes {
		total -= T(rec.TeamGoalsConceded / concededPerPenalty * rs.GoalsConcededUnit)
	}

	total += T(rec.PenaltiesMissed * rs.PenaltyMiss)
	total += T(rec.PenaltiesSaved * rs.PenaltySave)
	total += T(rec.OwnGoals * rs.OwnGoal)
	total += T(rec.YellowCards*rs.YellowCard + rec.RedCards*rs.RedCard)

	total += T(DefensiveContribution(rec, rs))
	return total
}

// ActualBasePoints returns the points earned from realized goals and assists,
// excluding bonus.
func ActualBasePoints(rec *model.PlayerMatchRecord, rs rules.RuleSet) int {
	return basePoints(rec, rs, rec.Goals, rec.Assists)
}

// ExpectedBasePoints returns the points the record would earn if goals and
// assists equalled xG and xA.
func ExpectedBasePoints(rec *model.PlayerMatchRecord, rs rules.RuleSet) float64 {
	return basePoints(rec, rs, rec.XG, rec.XA)
}

// ActualTotalPoints is ActualBasePoints plus the awarded bonus, 0 when unset.
func ActualTotalPoints(rec *model.PlayerMatchRecord, rs rules.RuleSet) int {
	return ActualBasePoints(rec, rs) + rec.BonusOrZero()
}

// Compute scores rec under rs.
func Compute(rec *model.PlayerMatchRecord, rs rules.RuleSet) model.PointsResult {
	actual := ActualBasePoints(rec, rs)
	expected := ExpectedBasePoints(rec, rs)
	return model.PointsResult{
		Record:                      *rec,
		ActualBasePoints:            actual,
		ExpectedBasePoints:          expected,
		ActualTotalPoints:           actual + rec.BonusOrZero(),
		DefensiveContributionPoints: DefensiveContribution(rec, rs),
		BasePointsDifference:        float64(actual) - expected,
	}
}

// ComputeAll scores every record in order.
func ComputeAll(recs []model.PlayerMatchRecord, rs rules.RuleSet) []model.PointsResult {
	out := make([]model.PointsResult, len(recs))
	for i := range recs {
		out[i] = Compute(&recs[i], rs)
	}
	return out
}
