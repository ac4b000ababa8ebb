package service

import "errors"

var (
	// ErrSessionClosed is returned when dispatching to a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMailboxFull is returned when a session cannot take more events.
	ErrMailboxFull = errors.New("session mailbox full")
	// ErrUnknownEvent is returned for an event type the session does not handle.
	ErrUnknownEvent = errors.New("unknown session event")
	// ErrTooManySessions is returned when the live session limit is reached.
	ErrTooManySessions = errors.New("too many live sessions")
	// ErrUnknownFormat is returned for an export format the backend does not render.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrInvalidRequest is returned for malformed view parameters.
	ErrInvalidRequest = errors.New("invalid view request")
)
