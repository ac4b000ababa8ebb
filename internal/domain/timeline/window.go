package timeline

import (
	"math"
	"time"
)

// Window is a contest's time bounds in epoch seconds.
type Window struct {
	Start int64 `json:"start_time"`
	End   int64 `json:"end_time"`
}

// DurationMs is the window length in milliseconds, zero when End precedes Start.
func (w Window) DurationMs() int64 {
	if w.End < w.Start {
		return 0
	}
	return (w.End - w.Start) * msPerSecond
}

// Status is where the wall clock sits relative to a Window.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// StatusAt classifies now against w. Missing bounds count as pending.
func StatusAt(w Window, now time.Time) Status {
	if w.Start == 0 || w.End == 0 {
		return StatusPending
	}
	sec := now.Unix()
	switch {
	case sec < w.Start:
		return StatusPending
	case sec <= w.End:
		return StatusRunning
	default:
		return StatusFinished
	}
}

// ClampPosition bounds a progress position to [0, 100]. NaN maps to 0.
func ClampPosition(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// PositionToRelativeMs maps a percentage of w to elapsed milliseconds.
func PositionToRelativeMs(position float64, w Window) int64 {
	position = ClampPosition(position)
	return int64(math.Floor(float64(w.DurationMs()) * position / 100))
}

// RelativeMsToPosition maps elapsed milliseconds back to a percentage of w.
func RelativeMsToPosition(ms int64, w Window) float64 {
	if ms < 0 {
		return 0
	}
	d := w.DurationMs()
	if d == 0 || ms >= d {
		return 100
	}
	return float64(ms) * 100 / float64(d)
}
