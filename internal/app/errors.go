package service

import "errors"

var (
	// ErrNoReport is returned by read methods before the first analysis.
	ErrNoReport = errors.New("no analysis report available")
	// ErrIncompleteRun is returned when some records were never scored.
	ErrIncompleteRun = errors.New("analysis incomplete")
	// ErrNoExporter is returned by Export when no exporter is configured.
	ErrNoExporter = errors.New("no exporter configured")
	// ErrUnknownDirection is returned for a performer direction other than over or under.
	ErrUnknownDirection = errors.New("unknown performer direction")
)
