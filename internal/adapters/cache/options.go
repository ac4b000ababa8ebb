package cache

import "time"

const (
	// DefaultTTL matches how long the backend considers a snapshot fresh.
	DefaultTTL = 30 * time.Second
	// DefaultMaxEntries bounds memory per cache.
	DefaultMaxEntries = 512
)

// Option configures the cache.
type Option func(*ttlCache)

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(d time.Duration) Option {
	return func(c *ttlCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithMaxEntries sets the capacity. Non-positive values are ignored.
func WithMaxEntries(n int) Option {
	return func(c *ttlCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}
