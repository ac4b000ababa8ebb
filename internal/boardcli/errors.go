package boardcli

import "errors"

var (
	// ErrTimeFlags is returned when both --at and --t are given.
	ErrTimeFlags = errors.New("--at and --t are mutually exclusive")
	// ErrPosition is returned for an --at outside [0, 100].
	ErrPosition = errors.New("--at must be within [0, 100]")
	// ErrNegativeTime is returned for a negative --t.
	ErrNegativeTime = errors.New("--t must not be negative")
)
