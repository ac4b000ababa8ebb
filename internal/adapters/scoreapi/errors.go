package scoreapi

import "errors"

var (
	// ErrTransport is returned when the backend cannot be reached.
	ErrTransport = errors.New("scoreboard backend unreachable")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected backend status")
	// ErrAPI is returned when the envelope carries a failure code.
	ErrAPI = errors.New("scoreboard backend error")
	// ErrMalformed is returned when a payload cannot be decoded.
	ErrMalformed = errors.New("malformed backend response")
	// ErrInvalidPath is returned for an empty contest path.
	ErrInvalidPath = errors.New("invalid contest path")
)
