package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/xpoints/internal/domain/model"
)

type field int

const (
	fieldPlayerID field = iota
	fieldPlayerName
	fieldTeamCode
	fieldMatchID
	fieldPosition
	fieldMinutes
	fieldGoals
	fieldAssists
	fieldSaves
	fieldPenaltiesMissed
	fieldPenaltiesSaved
	fieldOwnGoals
	fieldYellowCards
	fieldRedCards
	fieldConceded
	fieldXG
	fieldXA
	fieldClearances
	fieldBlocks
	fieldInterceptions
	fieldTacklesWon
	fieldRecoveries
	fieldBonus
	fieldBPS
	fieldEventPoints
	fieldGameweek
	fieldCount
)

// canonicalColumns maps each field's own header name to the field.
var canonicalColumns = map[string]field{
	"player_id":           fieldPlayerID,
	"player_name":         fieldPlayerName,
	"team_code":           fieldTeamCode,
	"match_id":            fieldMatchID,
	"position":            fieldPosition,
	"minutes_played":      fieldMinutes,
	"goals":               fieldGoals,
	"assists":             fieldAssists,
	"saves":               fieldSaves,
	"penalties_missed":    fieldPenaltiesMissed,
	"penalties_saved":     fieldPenaltiesSaved,
	"own_goals":           fieldOwnGoals,
	"yellow_cards":        fieldYellowCards,
	"red_cards":           fieldRedCards,
	"team_goals_conceded": fieldConceded,
	"xg":                  fieldXG,
	"xa":                  fieldXA,
	"clearances":          fieldClearances,
	"blocks":              fieldBlocks,
	"interceptions":       fieldInterceptions,
	"tackles_won":         fieldTacklesWon,
	"recoveries":          fieldRecoveries,
	"bonus":               fieldBonus,
	"bps":                 fieldBPS,
	"event_points":        fieldEventPoints,
	"gameweek":            fieldGameweek,
}

// columnAliases maps alternative headers to a field. An alias binds only when
// the file has no canonical header for that field: playermatchstats carries a
// goalkeeper-only goals_conceded ahead of team_goals_conceded.
var columnAliases = map[string]field{
	"element":  fieldPlayerID,
	"web_name": fieldPlayerName,
	"name":     fieldPlayerName,
	"team":     fieldTeamCode,
	"fixture":  fieldMatchID,

	"element_type": fieldPosition,
	"minutes":      fieldMinutes,
	"goals_scored": fieldGoals,

	"goals_conceded":   fieldConceded,
	"expected_goals":   fieldXG,
	"expected_assists": fieldXA,
	"tackles":          fieldTacklesWon,

	"actual_bonus_points": fieldBonus,
	"bps_score":           fieldBPS,
	"fpl_total_points":    fieldEventPoints,
	"total_points":        fieldEventPoints,

	"gw":    fieldGameweek,
	"round": fieldGameweek,
}

// normalizeHeader lowercases a header and strips a BOM and surrounding space.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// layout holds the column index of each field, or -1 when absent.
type layout [fieldCount]int

// newLayout maps headers to fields. A canonical header beats any alias; among
// headers of the same kind the leftmost one is used.
func newLayout(headers []string) layout {
	var l layout
	for i := range l {
		l[i] = -1
	}
	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = normalizeHeader(h)
	}
	for _, table := range []map[string]field{canonicalColumns, columnAliases} {
		for i, name := range names {
			f, ok := table[name]
			if ok && l[f] < 0 {
				l[f] = i
			}
		}
	}
	return l
}

func (l *layout) has(f field) bool { return l[f] >= 0 }

// Warning describes a cell that could not be parsed and fell back to its default.
type Warning struct {
	Row    int
	Column string
	Value  string
}

// rowParser converts raw cells into typed values, collecting warnings.
type rowParser struct {
	headers  []string
	layout   layout
	row      int
	warnings []Warning
}

func newRowParser(headers []string) *rowParser {
	return &rowParser{headers: headers, layout: newLayout(headers)}
}

func (p *rowParser) cell(cells []string, f field) string {
	i := p.layout[f]
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func (p *rowParser) warn(f field, value string) {
	p.warnings = append(p.warnings, Warning{Row: p.row, Column: p.headers[p.layout[f]], Value: value})
}

// isNull reports whether a cell carries no value.
func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "na", "n/a":
		return true
	}
	return false
}

func (p *rowParser) int(cells []string, f field) int {
	v := p.nullableInt(cells, f)
	if v == nil {
		return 0
	}
	return *v
}

func (p *rowParser) nullableInt(cells []string, f field) *int {
	s := p.cell(cells, f)
	if isNull(s) {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	// exports from dataframes write integer columns with nulls as floats
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl == math.Trunc(fl) && !math.IsInf(fl, 0) {
		n := int(fl)
		return &n
	}
	p.warn(f, s)
	return nil
}

func (p *rowParser) float(cells []string, f field) float64 {
	s := p.cell(cells, f)
	if isNull(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.warn(f, s)
		return 0
	}
	return v
}

func (p *rowParser) record(cells []string) model.PlayerMatchRecord {
	label := p.cell(cells, fieldPosition)
	return model.PlayerMatchRecord{
		PlayerID:          p.int(cells, fieldPlayerID),
		PlayerName:        p.cell(cells, fieldPlayerName),
		TeamCode:          p.cell(cells, fieldTeamCode),
		MatchID:           p.cell(cells, fieldMatchID),
		Gameweek:          p.int(cells, fieldGameweek),
		Position:          model.ParsePosition(label),
		PositionLabel:     label,
		MinutesPlayed:     p.int(cells, fieldMinutes),
		Goals:             p.int(cells, fieldGoals),
		Assists:           p.int(cells, fieldAssists),
		Saves:             p.int(cells, fieldSaves),
		PenaltiesMissed:   p.int(cells, fieldPenaltiesMissed),
		PenaltiesSaved:    p.int(cells, fieldPenaltiesSaved),
		OwnGoals:          p.int(cells, fieldOwnGoals),
		YellowCards:       p.int(cells, fieldYellowCards),
		RedCards:          p.int(cells, fieldRedCards),
		TeamGoalsConceded: p.int(cells, fieldConceded),
		XG:                p.float(cells, fieldXG),
		XA:                p.float(cells, fieldXA),
		Clearances:        p.int(cells, fieldClearances),
		Blocks:            p.int(cells, fieldBlocks),
		Interceptions:     p.int(cells, fieldInterceptions),
		TacklesWon:        p.int(cells, fieldTacklesWon),
		Recoveries:        p.int(cells, fieldRecoveries),
		Bonus:             p.nullableInt(cells, fieldBonus),
		BPS:               p.nullableInt(cells, fieldBPS),
		EventPoints:       p.nullableInt(cells, fieldEventPoints),
	}
}
