package view

import "errors"

var (
	// ErrUnknownAction is returned when an action name is not one of the views.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidTime is returned when the t parameter is not an integer.
	ErrInvalidTime = errors.New("invalid relative time")
	// ErrInvalidPage is returned when page or size is not an integer.
	ErrInvalidPage = errors.New("invalid page")
)
