// Package rules holds the versioned fantasy scoring rule sets.
//
// A RuleSet is a plain value. Callers pass it explicitly to every scoring call,
// so two versions can be evaluated side by side without shared state.
package rules

import (
	"github.com/okian/xpoints/internal/domain/model"
)

// Known rule set versions.
const (
	Version2024 = "2024-25"
	Version2023 = "2023-24"

	// DefaultVersion is used when no version is configured.
	DefaultVersion = Version2024
)

// PositionTable holds one value per position plus the value used for any
// position the table does not recognise.
type PositionTable struct {
	Goalkeeper int `yaml:"goalkeeper"`
	Defender   int `yaml:"defender"`
	Midfielder int `yaml:"midfielder"`
	Forward    int `yaml:"forward"`
	Default    int `yaml:"default"`
}

// For returns the table value for p.
func (t PositionTable) For(p model.Position) int {
	switch p {
	case model.PositionGoalkeeper:
		return t.Goalkeeper
	case model.PositionDefender:
		return t.Defender
	case model.PositionMidfielder:
		return t.Midfielder
	case model.PositionForward:
		return t.Forward
	case model.PositionUnknown:
		return t.Default
	default:
		return t.Default
	}
}

// RuleSet is the full set of point values and thresholds for one season.
type RuleSet struct {
	Version string `yaml:"version"`

	Appearance        int `yaml:"appearance"`
	Played60MinTotal  int `yaml:"played_60_min_total"`
	Assist            int `yaml:"assist"`
	SavesPerPoint     int `yaml:"saves_per_point"`
	GoalsConcededUnit int `yaml:"goals_conceded_penalty_unit"`
	PenaltyMiss       int `yaml:"penalty_miss"`
	PenaltySave       int `yaml:"penalty_save"`
	OwnGoal           int `yaml:"own_goal"`
	YellowCard        int `yaml:"yellow_card"`
	RedCard           int `yaml:"red_card"`

	DefensiveContributions int `yaml:"defensive_contributions"`
	DefenderCBITThreshold  int `yaml:"defender_cbit_threshold"`
	OtherCBIRTThreshold    int `yaml:"other_cbirt_threshold"`

	Goal       PositionTable `yaml:"goal_points"`
	CleanSheet PositionTable `yaml:"clean_sheet"`
}

// GoalPoints returns the points for one goal scored at position p.
func (rs RuleSet) GoalPoints(p model.Position) int { return rs.Goal.For(p) }

// CleanSheetPoints returns the clean sheet award at position p.
func (rs RuleSet) CleanSheetPoints(p model.Position) int { return rs.CleanSheet.For(p) }

// Season2024 returns the 2024-25 rule set, the first to award defensive contributions.
func Season2024() RuleSet {
	return RuleSet{
		Version:           Version2024,
		Appearance:        1,
		Played60MinTotal:  2,
		Assist:            3,
		SavesPerPoint:     3,
		GoalsConcededUnit: 1,
		PenaltyMiss:       -2,
		PenaltySave:       5,
		OwnGoal:           -2,
		YellowCard:        -1,
		RedCard:           -3,

		DefensiveContributions: 2,
		DefenderCBITThreshold:  10,
		OtherCBIRTThreshold:    12,

		Goal:       PositionTable{Goalkeeper: 6, Defender: 6, Midfielder: 5, Forward: 4, Default: 4},
		CleanSheet: PositionTable{Goalkeeper: 4, Defender: 4, Midfielder: 1, Forward: 0, Default: 0},
	}
}

// Season2023 returns the 2023-24 rule set. It matches 2024-25 except that no
// defensive contribution points exist.
func Season2023() RuleSet {
	rs := Season2024()
	rs.Version = Version2023
	rs.DefensiveContributions = 0
	return rs
}

// ForVersion returns the built-in rule set for version.
func ForVersion(version string) (RuleSet, error) {
	switch version {
	case Version2024, "":
		return Season2024(), nil
	case Version2023:
		return Season2023(), nil
	default:
		return RuleSet{}, ErrUnknownVersion
	}
}

// Versions lists the built-in versions, newest first.
func Versions() []string {
	return []string{Version2024, Version2023}
}

// Validate checks the values a calculator divides by or compares against.
func (rs RuleSet) Validate() error {
	if rs.SavesPerPoint <= 0 {
		return ErrInvalidSavesPerPoint
	}
	if rs.DefensiveContributions < 0 {
		return ErrNegativeDefensive
	}
	if rs.DefenderCBITThreshold < 0 || rs.OtherCBIRTThreshold < 0 {
		return ErrNegativeThreshold
	}
	return nil
}
