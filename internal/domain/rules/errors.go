package rules

import "errors"

// Rule set errors.
var (
	ErrUnknownVersion       = errors.New("unknown rule set version")
	ErrInvalidSavesPerPoint = errors.New("saves_per_point must be positive")
	ErrNegativeDefensive    = errors.New("defensive_contributions must not be negative")
	ErrNegativeThreshold    = errors.New("defensive thresholds must not be negative")
)
