package boardcli

import (
	"fmt"
	"time"

	"github.com/okian/scoreview/internal/domain/timeline"
)

// Defaults for the global flags.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// Config holds the global flags shared by every command.
type Config struct {
	BaseURL   string        // Scoreboard backend serving /api/*
	Timeout   time.Duration // Per-request timeout
	RateLimit int           // Requests per second, 0 for unlimited
	Group     string        // Team group, "all" for every team
	Location  string        // Timezone for absolute times
	Verbose   bool          // Log requests

	// At is a timeline position in percent; T is milliseconds since start.
	// Negative means unset.
	At float64
	T  int64
}

func newConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		Group:    "all",
		Location: "Asia/Shanghai",
		At:       -1,
		T:        -1,
	}
}

// validate checks the time flags.
func (c *Config) validate() error {
	if c.At >= 0 && c.T >= 0 {
		return ErrTimeFlags
	}
	if c.At > 100 {
		return fmt.Errorf("%w: %v", ErrPosition, c.At)
	}
	if c.T < -1 {
		return fmt.Errorf("%w: %d", ErrNegativeTime, c.T)
	}
	return nil
}

// explicitTime reports whether t is known without the contest window.
func (c *Config) explicitTime() bool { return c.At < 0 && c.T >= 0 }

// relativeMs resolves the requested time against w. Without a time flag the
// whole contest is shown, so the backend is asked for t = duration.
func (c *Config) relativeMs(w timeline.Window) int64 {
	switch {
	case c.T >= 0:
		if d := w.DurationMs(); d > 0 && c.T > d {
			return d
		}
		return c.T
	case c.At >= 0:
		return timeline.PositionToRelativeMs(c.At, w)
	default:
		return w.DurationMs()
	}
}
