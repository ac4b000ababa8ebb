// Package timeline converts between contest time, relative milliseconds and
// progress-bar positions, and models the scrubber a viewer drags across it.
package timeline

import (
	"fmt"
	"time"
)

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1000
)

// ToClock renders ms as HH:MM:SS. Values truncate and negatives clamp to zero.
func ToClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / msPerHour
	m := ms % msPerHour / msPerMinute
	s := ms % msPerMinute / msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Remaining is the clock label of durationMs-relativeMs, floored at zero.
func Remaining(durationMs, relativeMs int64) string {
	if relativeMs >= durationMs {
		return "00:00:00"
	}
	return ToClock(durationMs - relativeMs)
}

// AbsoluteLabel renders an epoch-seconds timestamp in loc with its UTC offset,
// e.g. "2024/05/01 09:00:00 GMT+8". Zero renders as "".
func AbsoluteLabel(epochSeconds int64, loc *time.Location) string {
	if epochSeconds == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(epochSeconds, 0).In(loc)
	return t.Format("2006/01/02 15:04:05") + " " + gmtOffset(t)
}

func gmtOffset(t time.Time) string {
	_, off := t.Zone()
	if off == 0 {
		return "GMT"
	}
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	h, m := off/3600, off%3600/60
	if m == 0 {
		return fmt.Sprintf("GMT%s%d", sign, h)
	}
	return fmt.Sprintf("GMT%s%d:%02d", sign, h, m)
}

// DurationLabel is the clock label of the whole window.
func DurationLabel(w Window) string {
	if w.Start == 0 || w.End == 0 {
		return "00:00:00"
	}
	return ToClock(w.DurationMs())
}
