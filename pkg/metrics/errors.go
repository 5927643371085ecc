package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNotGathered = errors.New("metrics registry could not be gathered")
)
