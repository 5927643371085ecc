package ingest

import "errors"

var (
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("ingest: missing header row")
	// ErrNoNameColumn is returned when a player stats file has no name column.
	ErrNoNameColumn = errors.New("ingest: missing player name column")
)
