// Package worker runs a single loop that applies mailbox items in order.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/scoreview/pkg/logger"
)

// Queue defines how the worker receives items.
type Queue[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// Handler applies one item. Errors are logged and do not stop the loop.
type Handler[T any] interface {
	Handle(ctx context.Context, item T) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, item T) error

// Handle calls f.
func (f HandlerFunc[T]) Handle(ctx context.Context, item T) error { return f(ctx, item) }

// Worker processes items from a queue.
type Worker interface {
	// Run starts the loop until ctx is canceled, Shutdown is called or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for the current item to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker applies items one at a time, so a handler never runs concurrently with itself.
type InMemoryWorker[T any] struct {
	queue   Queue[T]
	handler Handler[T]
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker[T any](q Queue[T], h Handler[T], opts ...Option) *InMemoryWorker[T] {
	cfg := config{name: "worker", logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InMemoryWorker[T]{
		queue:    q,
		handler:  h,
		name:     cfg.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   cfg.logger.Named(cfg.name),
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker[T]) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case item, ok := <-items:
			if !ok {
				return
			}
			if err := w.handler.Handle(ctx, item); err != nil {
				w.logger.Warn(ctx, "error handling item", logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker[T]) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker[T]) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
