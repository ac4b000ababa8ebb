// Package queue is a bounded mailbox. Producers never block: a full or
// closed mailbox rejects the item.
package queue

import (
	"context"
	"sync"

	"github.com/okian/scoreview/pkg/metrics"
)

const defaultQueueCapacity = 64

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item. It returns false if the item was rejected.
	Enqueue(ctx context.Context, item T) bool

	// Dequeue returns the channel items arrive on. It is closed by Close.
	Dequeue(ctx context.Context) <-chan T

	// Len returns the number of queued items.
	Len(ctx context.Context) int

	// Close stops accepting items and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items  chan T
	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	cfg := config{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InMemoryQueue[T]{items: make(chan T, cfg.capacity)}
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordMailboxRejected()
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordMailboxRejected()
		return false
	default:
	}

	select {
	case q.items <- item:
		return true
	default:
		metrics.RecordMailboxRejected()
		return false
	}
}

// Dequeue returns the receive side of the mailbox.
func (q *InMemoryQueue[T]) Dequeue(_ context.Context) <-chan T {
	return q.items
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len(_ context.Context) int {
	return len(q.items)
}

// Close gracefully shuts down the queue. Items already queued stay readable.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
