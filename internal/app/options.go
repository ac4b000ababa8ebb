package service

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/scoreview/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionBackend serves live sessions from b instead of the backend given
// to New. Sessions keep their own cache, so b should not cache.
func WithSessionBackend(b Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.sessionBackend = b
		}
	}
}

// WithSettleDelay sets how long a live view change must hold before it is fetched.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.settleDelay = d
		}
	}
}

// WithSessionCache sizes the response cache each live session owns.
func WithSessionCache(ttl time.Duration, maxEntries int) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
		if maxEntries > 0 {
			s.cacheSize = maxEntries
		}
	}
}

// WithPageSize sets the default submissions page size.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithMailboxSize bounds each session's pending events.
func WithMailboxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.mailboxSize = n
		}
	}
}

// WithMaxSessions caps concurrently open live sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithLocation sets the zone absolute timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}
