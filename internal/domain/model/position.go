package model

import (
	"strconv"
	"strings"
)

// Position is the fantasy position a player is registered under.
type Position int

// Known positions. PositionUnknown covers any label the ingestion layer could not
// map; scoring treats it through the rule set's explicit default branch.
const (
	PositionUnknown Position = iota
	PositionGoalkeeper
	PositionDefender
	PositionMidfielder
	PositionForward
)

// String returns the canonical label used in exports and groupings.
func (p Position) String() string {
	switch p {
	case PositionGoalkeeper:
		return "Goalkeeper"
	case PositionDefender:
		return "Defender"
	case PositionMidfielder:
		return "Midfielder"
	case PositionForward:
		return "Forward"
	default:
		return "Unknown"
	}
}

// ParsePosition maps a position label to a Position.
// Accepts full names, the usual short codes (GK, GKP, DEF, MID, FWD) and the
// numeric element types 1-4. Matching is case-insensitive.
func ParsePosition(label string) Position {
	s := strings.ToLower(strings.TrimSpace(label))
	switch s {
	case "goalkeeper", "gk", "gkp", "keeper":
		return PositionGoalkeeper
	case "defender", "def", "d":
		return PositionDefender
	case "midfielder", "mid", "m":
		return PositionMidfielder
	case "forward", "fwd", "fw", "striker", "f":
		return PositionForward
	}
	if n, err := strconv.Atoi(s); err == nil {
		switch n {
		case 1:
			return PositionGoalkeeper
		case 2:
			return PositionDefender
		case 3:
			return PositionMidfielder
		case 4:
			return PositionForward
		}
	}
	return PositionUnknown
}
