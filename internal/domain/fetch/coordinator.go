// Package fetch turns a stream of view query keys into backend fetches.
//
// Conventions:
//   - Submit debounces; Load fires immediately.
//   - Each action has one panel. The panel's latest dispatch owns it; older
//     responses are dropped when they land.
//   - Identical keys in flight share one call.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
	"github.com/okian/scoreview/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the data for one query key.
type Fetcher interface {
	Fetch(ctx context.Context, key view.QueryKey) (any, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, key view.QueryKey) (any, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, key view.QueryKey) (any, error) {
	return f(ctx, key)
}

// Panel is what one sub-view currently shows.
type Panel struct {
	// Key is the query the data or error belongs to.
	Key     view.QueryKey `json:"-"`
	Data    any           `json:"data,omitempty"`
	Err     string        `json:"error,omitempty"`
	Loading bool          `json:"loading"`
	// ErrorOnly is set when the first load failed, so there is no data to keep showing.
	ErrorOnly bool   `json:"error_only,omitempty"`
	Loaded    bool   `json:"loaded"`
	Epoch     uint64 `json:"epoch"`
}

type panelState struct {
	Panel
	requested view.QueryKey
	latest    uint64
}

// Coordinator debounces, dedupes and orders fetches for a viewer.
type Coordinator struct {
	fetcher  Fetcher
	clock    clockwork.Clock
	settle   time.Duration
	log      logger.Logger
	onUpdate func(view.Action, Panel)

	timer *SettleTimer
	calls singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	epoch     uint64
	panels    map[view.Action]*panelState
	submitted view.QueryKey
	closed    bool
}

// NewCoordinator creates a Coordinator whose fetches run under ctx.
func NewCoordinator(ctx context.Context, fetcher Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher: fetcher,
		clock:   clockwork.NewRealClock(),
		settle:  DefaultSettleDelay,
		log:     logger.Nop(),
		panels:  make(map[view.Action]*panelState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.timer = NewSettleTimer(c.clock, c.settle)
	return c
}

// Load fetches key now, dropping any value still waiting to settle.
func (c *Coordinator) Load(key view.QueryKey) error {
	c.timer.Cancel()
	return c.dispatch(key)
}

// Submit fetches key once it has been the latest value for the settle delay.
func (c *Coordinator) Submit(key view.QueryKey) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.submitted = key
	c.mu.Unlock()

	metrics.RecordFetchSubmitted()
	if c.timer.Schedule(c.settled) {
		metrics.RecordFetchCoalesced()
	}
	return nil
}

func (c *Coordinator) settled() {
	c.mu.Lock()
	key := c.submitted
	c.mu.Unlock()
	if err := c.dispatch(key); err != nil {
		c.log.Debug(c.ctx, "settled fetch dropped", logger.Error(err))
	}
}

func (c *Coordinator) dispatch(key view.QueryKey) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	p := c.panel(key.Action)
	if p.Loading && p.requested == key {
		c.mu.Unlock()
		metrics.RecordFetchSkipped()
		return nil
	}
	if !p.Loading && p.Loaded && p.Err == "" && p.Key == key {
		c.mu.Unlock()
		metrics.RecordFetchSkipped()
		return nil
	}
	c.epoch++
	epoch := c.epoch
	p.requested = key
	p.latest = epoch
	p.Loading = true
	snap := p.Panel
	c.wg.Add(1)
	c.mu.Unlock()

	metrics.RecordFetchIssued(string(key.Action))
	c.notify(key.Action, snap)

	go c.run(key, epoch)
	return nil
}

func (c *Coordinator) run(key view.QueryKey, epoch uint64) {
	defer c.wg.Done()

	v, err, shared := c.calls.Do(key.Signature(), func() (any, error) {
		return c.fetcher.Fetch(c.ctx, key)
	})
	if shared {
		metrics.RecordFetchShared()
	}
	c.resolve(key, epoch, v, err)
}

func (c *Coordinator) resolve(key view.QueryKey, epoch uint64, v any, err error) {
	c.mu.Lock()
	p := c.panel(key.Action)
	if c.closed || p.latest != epoch {
		c.mu.Unlock()
		metrics.RecordFetchStale()
		return
	}
	p.Loading = false
	p.Key = key
	p.Epoch = epoch
	if err != nil {
		p.Err = err.Error()
		p.ErrorOnly = !p.Loaded
	} else {
		p.Data = v
		p.Err = ""
		p.ErrorOnly = false
		p.Loaded = true
	}
	snap := p.Panel
	c.mu.Unlock()

	if err != nil {
		c.log.Warn(c.ctx, "fetch failed",
			logger.String("action", string(key.Action)),
			logger.String("key", key.Signature()),
			logger.Error(err))
	}
	c.notify(key.Action, snap)
}

func (c *Coordinator) notify(a view.Action, p Panel) {
	if c.onUpdate != nil {
		c.onUpdate(a, p)
	}
}

// panel must be called with c.mu held.
func (c *Coordinator) panel(a view.Action) *panelState {
	p, ok := c.panels[a]
	if !ok {
		p = &panelState{}
		c.panels[a] = p
	}
	return p
}

// Panel returns a copy of what action's sub-view shows.
func (c *Coordinator) Panel(a view.Action) Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.panels[a]; ok {
		return p.Panel
	}
	return Panel{}
}

// Pending reports whether a submitted value is still settling.
func (c *Coordinator) Pending() bool {
	return c.timer.Pending()
}

// Close cancels the settle timer and in-flight fetches and waits for them to finish.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.timer.Cancel()
	c.cancel()
	c.wg.Wait()
}
