package export

import "errors"

// Export errors.
var (
	ErrNoSink         = errors.New("no export sink configured")
	ErrUnknownBackend = errors.New("unknown blob backend")
	ErrMissingBucket  = errors.New("bucket is required")
)
