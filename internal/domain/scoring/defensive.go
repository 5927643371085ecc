package scoring

import (
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
)

// CBIT is clearances + blocks + interceptions + tackles won.
func CBIT(rec *model.PlayerMatchRecord) int {
	return rec.Clearances + rec.Blocks + rec.Interceptions + rec.TacklesWon
}

// CBIRT is CBIT plus recoveries.
func CBIRT(rec *model.PlayerMatchRecord) int {
	return CBIT(rec) + rec.Recoveries
}

// DefensiveContribution returns rs.DefensiveContributions when the record
// reaches its position's threshold, otherwise 0.
//
// Defenders are measured on CBIT. Every other position, goalkeepers and
// unknown labels included, is measured on CBIRT.
func DefensiveContribution(rec *model.PlayerMatchRecord, rs rules.RuleSet) int {
	if rec.Position == model.PositionDefender {
		if CBIT(rec) >= rs.DefenderCBITThreshold {
			return rs.DefensiveContributions
		}
		return 0
	}
	if CBIRT(rec) >= rs.OtherCBIRTThreshold {
		return rs.DefensiveContributions
	}
	return 0
}
