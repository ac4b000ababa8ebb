package worker

import (
	"github.com/okian/scoreview/pkg/logger"
)

type config struct {
	name   string
	logger logger.Logger
}

// Option applies a configuration option to the InMemoryWorker.
type Option func(*config)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
