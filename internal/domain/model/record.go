// Package model contains domain models passed between layers.
package model

import "strconv"

// PlayerMatchRecord is one player's statistics for one match.
// Absent counts are zero; Bonus, BPS and EventPoints are nil when the source
// had no value for them.
type PlayerMatchRecord struct {
	PlayerID   int    // source player id, 0 when unknown
	PlayerName string // display name (web_name)
	TeamCode   string
	MatchID    string
	Gameweek   int // 0 when the source has no gameweek

	Position      Position
	PositionLabel string // raw label from the source, kept for unknown positions

	MinutesPlayed     int
	Goals             int
	Assists           int
	Saves             int
	PenaltiesMissed   int
	PenaltiesSaved    int
	OwnGoals          int
	YellowCards       int
	RedCards          int
	TeamGoalsConceded int

	XG float64 // expected goals
	XA float64 // expected assists

	Clearances    int
	Blocks        int
	Interceptions int
	TacklesWon    int
	Recoveries    int

	Bonus       *int // bonus points actually awarded
	BPS         *int // bonus points system score for the match
	EventPoints *int // externally reported total, comparison only
}

// BonusOrZero returns the awarded bonus, or 0 when unset.
func (r *PlayerMatchRecord) BonusOrZero() int { return derefOrZero(r.Bonus) }

// BPSOrZero returns the BPS score, or 0 when unset.
func (r *PlayerMatchRecord) BPSOrZero() int { return derefOrZero(r.BPS) }

// EventPointsOrZero returns the externally reported points, or 0 when unset.
func (r *PlayerMatchRecord) EventPointsOrZero() int { return derefOrZero(r.EventPoints) }

// PositionName returns the label to group and export the record under.
func (r *PlayerMatchRecord) PositionName() string {
	if r.Position == PositionUnknown && r.PositionLabel != "" {
		return r.PositionLabel
	}
	return r.Position.String()
}

// Key identifies the (player, match) pair. The player id wins over the name
// when both are present.
func (r *PlayerMatchRecord) Key() string {
	player := r.PlayerName
	if r.PlayerID != 0 {
		player = strconv.Itoa(r.PlayerID)
	}
	return player + "|" + r.MatchID
}

// IntPtr returns a pointer to v. Handy for the nullable record fields.
func IntPtr(v int) *int { return &v }

func derefOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
