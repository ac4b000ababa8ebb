package fetch

import "errors"

// ErrClosed is returned by operations on a closed Coordinator.
var ErrClosed = errors.New("fetch coordinator closed")
