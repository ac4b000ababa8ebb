package timeline

// Scrubber tracks the progress bar. The live position follows the pointer;
// the committed position only moves when a drag is released or on a seek.
type Scrubber struct {
	window    Window
	live      float64
	committed float64
	ms        int64
	dragging  bool
}

// NewScrubber starts at the end of w.
func NewScrubber(w Window) *Scrubber {
	return &Scrubber{window: w, live: 100, committed: 100, ms: w.DurationMs()}
}

// Window returns the bounds the scrubber maps onto.
func (s *Scrubber) Window() Window { return s.window }

// Press begins a drag.
func (s *Scrubber) Press() { s.dragging = true }

// Dragging reports whether a drag is in progress.
func (s *Scrubber) Dragging() bool { return s.dragging }

// Move updates the live position. Outside a drag it is ignored.
func (s *Scrubber) Move(position float64) {
	if !s.dragging {
		return
	}
	s.live = ClampPosition(position)
}

// Release ends the drag and commits the live position. It returns the
// committed relative time and whether it differs from the previous one.
func (s *Scrubber) Release() (int64, bool) {
	if !s.dragging {
		return s.ms, false
	}
	s.dragging = false
	return s.commit(s.live)
}

// Seek jumps straight to position, as a click on the bar does.
func (s *Scrubber) Seek(position float64) (int64, bool) {
	s.dragging = false
	s.live = ClampPosition(position)
	return s.commit(s.live)
}

// SeekMs positions the scrubber at a relative time, typically decoded from a URL.
func (s *Scrubber) SeekMs(ms int64) (int64, bool) {
	if ms < 0 {
		ms = 0
	}
	if d := s.window.DurationMs(); ms > d {
		ms = d
	}
	s.dragging = false
	s.live = RelativeMsToPosition(ms, s.window)
	s.committed = s.live
	changed := ms != s.ms
	s.ms = ms
	return ms, changed
}

func (s *Scrubber) commit(position float64) (int64, bool) {
	ms := PositionToRelativeMs(position, s.window)
	changed := ms != s.ms
	s.committed = position
	s.ms = ms
	return ms, changed
}

// Live is the position under the pointer.
func (s *Scrubber) Live() float64 { return s.live }

// Committed is the position the data reflects.
func (s *Scrubber) Committed() float64 { return s.committed }

// LiveMs is Live as relative milliseconds.
func (s *Scrubber) LiveMs() int64 { return PositionToRelativeMs(s.live, s.window) }

// CommittedMs is Committed as relative milliseconds.
func (s *Scrubber) CommittedMs() int64 { return s.ms }
