package scoreapi

import (
	"net/http"
	"time"

	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/pkg/logger"
	"go.uber.org/ratelimit"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the HTTP client's own setting.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache reuses decoded responses for identical requests.
func WithCache(rc cache.Cache) Option {
	return func(c *Client) {
		c.cache = rc
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSec int) Option {
	return func(c *Client) {
		if perSec > 0 {
			c.limiter = ratelimit.New(perSec)
		}
	}
}
