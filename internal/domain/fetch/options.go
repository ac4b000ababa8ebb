package fetch

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
)

// DefaultSettleDelay is how long a value must stay unchanged before it is fetched.
const DefaultSettleDelay = 300 * time.Millisecond

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSettleDelay sets the debounce delay. Negative values are ignored.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.settle = d
		}
	}
}

// WithClock sets the clock driving the settle timer.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithOnUpdate registers a listener called after each panel change.
// It runs outside the coordinator lock.
func WithOnUpdate(fn func(view.Action, Panel)) Option {
	return func(c *Coordinator) {
		c.onUpdate = fn
	}
}
