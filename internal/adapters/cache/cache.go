// Package cache holds backend responses for a short time so that revisiting a
// view does not hit the backend again.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/okian/scoreview/pkg/metrics"
)

// Cache stores responses by request signature.
type Cache interface {
	// Get returns the value for key if present and not expired.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores value under key, evicting the oldest entry when full.
	Set(ctx context.Context, key string, value any)

	// Len is the number of live entries.
	Len() int

	// Purge drops every entry.
	Purge()
}

// ttlCache implements Cache over an expiring LRU.
type ttlCache struct {
	lru        *expirable.LRU[string, any]
	ttl        time.Duration
	maxEntries int
}

// NewTTLCache creates a bounded cache whose entries expire after the TTL.
func NewTTLCache(opts ...Option) Cache {
	c := &ttlCache{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lru = expirable.NewLRU[string, any](c.maxEntries, nil, c.ttl)
	return c
}

func (c *ttlCache) Get(_ context.Context, key string) (any, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return v, ok
}

func (c *ttlCache) Set(_ context.Context, key string, value any) {
	c.lru.Add(key, value)
}

func (c *ttlCache) Len() int {
	return c.lru.Len()
}

func (c *ttlCache) Purge() {
	c.lru.Purge()
}
