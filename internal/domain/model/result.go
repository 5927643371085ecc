package model

// PointsResult is the scored form of one PlayerMatchRecord.
// Values are computed once and never mutated; WithEstimatedBonus returns a copy.
type PointsResult struct {
	Record PlayerMatchRecord

	ActualBasePoints            int
	ExpectedBasePoints          float64
	ActualTotalPoints           int // base + awarded bonus
	DefensiveContributionPoints int
	BasePointsDifference        float64 // actual base - expected base

	// EstimatedBonusPoints is the bonus the match BPS ranking would award.
	// Zero until the batch has been ranked.
	EstimatedBonusPoints int
}

// WithEstimatedBonus returns a copy of r carrying the given bonus estimate.
func (r PointsResult) WithEstimatedBonus(points int) PointsResult {
	r.EstimatedBonusPoints = points
	return r
}
