package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrLoadRoster    = errors.New("failed to load roster")
	ErrInvalidRoster = errors.New("invalid roster")
)
