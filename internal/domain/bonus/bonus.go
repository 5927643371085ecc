// Package bonus estimates bonus points from a match's BPS scores.
//
// Ranking looks a score up by value in the descending list, so players tied on
// BPS all take the rank of the first tied entry. With [50, 40, 40, 10] both
// players on 40 get rank 1 and two points, and the player on 10 gets nothing.
// Official scoring shares ranks differently; this package keeps the simpler
// first-occurrence rule.
package bonus

import (
	"sort"

	"github.com/okian/xpoints/internal/domain/model"
)

// ladder is the award for ranks 0, 1 and 2.
var ladder = [...]int{3, 2, 1}

// Award returns the bonus points for a player whose BPS is playerBPS in a match
// whose full BPS multiset is matchBPS. It returns 0 when matchBPS is empty or
// does not contain playerBPS.
func Award(playerBPS int, matchBPS []int) int {
	if len(matchBPS) == 0 {
		return 0
	}
	sorted := make([]int, len(matchBPS))
	copy(sorted, matchBPS)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return awardSorted(playerBPS, sorted)
}

func awardSorted(playerBPS int, sorted []int) int {
	for rank, v := range sorted {
		if v != playerBPS {
			continue
		}
		if rank < len(ladder) {
			return ladder[rank]
		}
		return 0
	}
	return 0
}

// AwardMatches estimates bonus for every record. Each match's BPS set is
// gathered in full before any player in it is ranked. Records with no BPS are
// left out of their match's set and get 0. The result is indexed like recs.
func AwardMatches(recs []model.PlayerMatchRecord) []int {
	byMatch := make(map[string][]int)
	for i := range recs {
		if recs[i].BPS == nil {
			continue
		}
		byMatch[recs[i].MatchID] = append(byMatch[recs[i].MatchID], *recs[i].BPS)
	}
	for id, scores := range byMatch {
		sort.Sort(sort.Reverse(sort.IntSlice(scores)))
		byMatch[id] = scores
	}

	out := make([]int, len(recs))
	for i := range recs {
		if recs[i].BPS == nil {
			continue
		}
		out[i] = awardSorted(*recs[i].BPS, byMatch[recs[i].MatchID])
	}
	return out
}

// Apply attaches AwardMatches estimates to results scored from the same batch.
func Apply(results []model.PointsResult) []model.PointsResult {
	recs := make([]model.PlayerMatchRecord, len(results))
	for i := range results {
		recs[i] = results[i].Record
	}
	awards := AwardMatches(recs)
	out := make([]model.PointsResult, len(results))
	for i := range results {
		out[i] = results[i].WithEstimatedBonus(awards[i])
	}
	return out
}
