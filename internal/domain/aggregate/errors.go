package aggregate

import "errors"

// Aggregation errors.
var (
	ErrZeroMinutes   = errors.New("per-90 value undefined for zero minutes")
	ErrUnknownMetric = errors.New("unknown metric")
	ErrInvalidLimit  = errors.New("limit must not be negative")
)
