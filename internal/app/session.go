package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/mq/queue"
	"github.com/okian/scoreview/internal/adapters/mq/worker"
	"github.com/okian/scoreview/internal/domain/fetch"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/internal/domain/timeline"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
	"github.com/okian/scoreview/pkg/metrics"
)

const sessionShutdownTimeout = 5 * time.Second

// EventType names a viewer interaction.
type EventType string

const (
	EventScrubStart   EventType = "scrub_start"
	EventScrubMove    EventType = "scrub_move"
	EventScrubEnd     EventType = "scrub_end"
	EventSeek         EventType = "seek"
	EventGroup        EventType = "group"
	EventAction       EventType = "action"
	EventPage         EventType = "page"
	EventFilter       EventType = "filter"
	EventFiltersReset EventType = "filters_reset"
)

// Event is one viewer interaction as received over the wire.
type Event struct {
	Type     EventType `json:"type"`
	Position float64   `json:"position,omitempty"`
	Group    string    `json:"group,omitempty"`
	Action   string    `json:"action,omitempty"`
	Page     int       `json:"page,omitempty"`
	Size     int       `json:"size,omitempty"`
	Field    string    `json:"field,omitempty"`
	Value    string    `json:"value,omitempty"`
}

// Snapshot is everything a viewer renders at one moment.
type Snapshot struct {
	SessionID string              `json:"session_id"`
	Path      string              `json:"path"`
	Contest   string              `json:"contest"`
	Timeline  TimelineView        `json:"timeline"`
	State     view.State          `json:"state"`
	Query     string              `json:"query"`
	Panel     fetch.Panel         `json:"panel"`
	Settling  bool                `json:"settling"`
	Groups    []model.GroupOption `json:"groups"`
	// Seq increases with every snapshot sent to subscribers.
	Seq uint64 `json:"seq"`
}

// Session is one mounted viewer. Events are applied in order by a single
// loop; fetches settle through the coordinator.
type Session struct {
	id   string
	path string
	svc  *Service
	cfg  model.ContestConfig
	log  logger.Logger

	mu    sync.RWMutex
	state view.State
	scrub *timeline.Scrubber

	cache   cache.Cache
	coord   *fetch.Coordinator
	mailbox *queue.InMemoryQueue[Event]
	loop    *worker.InMemoryWorker[Event]

	ctx    context.Context
	cancel context.CancelFunc

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
	seq    uint64
	closed bool
	once   sync.Once
}

func newSession(svc *Service, path string, cfg model.ContestConfig, state view.State) *Session {
	s := &Session{
		id:    uuid.NewString(),
		path:  path,
		svc:   svc,
		cfg:   cfg,
		scrub: timeline.NewScrubber(cfg.Window()),
		cache: cache.NewTTLCache(cache.WithTTL(svc.cacheTTL), cache.WithMaxEntries(svc.cacheSize)),
		subs:  make(map[int]chan Snapshot),
	}
	s.log = svc.logger.Named("session").With(logger.String("session", s.id))
	s.state = resolveTime(state, s.scrub)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.coord = fetch.NewCoordinator(s.ctx,
		&viewFetcher{backend: svc.sessionBackend, path: path, cfg: cfg, cache: s.cache},
		fetch.WithClock(svc.clock),
		fetch.WithSettleDelay(svc.settleDelay),
		fetch.WithLogger(s.log),
		fetch.WithOnUpdate(func(view.Action, fetch.Panel) { s.publish() }),
	)
	s.mailbox = queue.NewInMemoryQueue[Event](queue.WithCapacity(svc.mailboxSize))
	s.loop = worker.NewInMemoryWorker[Event](s.mailbox, worker.HandlerFunc[Event](s.handle),
		worker.WithName("session-loop"), worker.WithLogger(s.log))
	return s
}

func (s *Session) start() {
	metrics.SessionOpened()
	go s.loop.Run(s.ctx)
	if err := s.coord.Load(s.Key()); err != nil {
		s.log.Warn(s.ctx, "initial load refused", logger.Error(err))
	}
}

// ID identifies the session.
func (s *Session) ID() string { return s.id }

// Key is the query key of the current state.
func (s *Session) Key() view.QueryKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Key()
}

// Dispatch queues e for the session loop. It never blocks.
func (s *Session) Dispatch(ctx context.Context, e Event) error {
	if !knownEvent(e.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	if s.mailbox.IsClosed() {
		return ErrSessionClosed
	}
	if !s.mailbox.Enqueue(ctx, e) {
		if s.mailbox.IsClosed() {
			return ErrSessionClosed
		}
		return ErrMailboxFull
	}
	return nil
}

func knownEvent(t EventType) bool {
	switch t {
	case EventScrubStart, EventScrubMove, EventScrubEnd, EventSeek,
		EventGroup, EventAction, EventPage, EventFilter, EventFiltersReset:
		return true
	}
	return false
}

// handle runs on the session loop only.
func (s *Session) handle(ctx context.Context, e Event) error {
	next, submit, err := s.apply(e)
	if err != nil {
		return err
	}
	metrics.RecordEventApplied(string(e.Type))
	if submit {
		if err := s.coord.Submit(next); err != nil {
			return err
		}
	}
	s.publish()
	return nil
}

func (s *Session) apply(e Event) (view.QueryKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ev view.Event
	switch e.Type {
	case EventScrubStart:
		s.scrub.Press()
		return view.QueryKey{}, false, nil
	case EventScrubMove:
		s.scrub.Move(e.Position)
		return view.QueryKey{}, false, nil
	case EventScrubEnd:
		ms, changed := s.scrub.Release()
		if !changed {
			return view.QueryKey{}, false, nil
		}
		ev = view.TimeChanged{RelativeMs: ms}
	case EventSeek:
		ms, changed := s.scrub.Seek(e.Position)
		if !changed {
			return view.QueryKey{}, false, nil
		}
		ev = view.TimeChanged{RelativeMs: ms}
	case EventGroup:
		ev = view.GroupChanged{Group: e.Group}
	case EventAction:
		a, err := view.ParseAction(e.Action)
		if err != nil {
			return view.QueryKey{}, false, err
		}
		ev = view.ActionChanged{Action: a}
	case EventPage:
		ev = view.PageChanged{Number: e.Page, Size: e.Size}
	case EventFilter:
		field := view.FilterField(e.Field)
		switch field {
		case view.FilterSchool, view.FilterTeam, view.FilterLanguage, view.FilterStatus:
		default:
			return view.QueryKey{}, false, fmt.Errorf("%w: filter %q", ErrUnknownEvent, e.Field)
		}
		ev = view.FilterChanged{Field: field, Value: e.Value}
	case EventFiltersReset:
		ev = view.FiltersReset{}
	default:
		return view.QueryKey{}, false, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}

	var key view.QueryKey
	s.state, key = view.Reduce(s.state, ev)
	return key, true, nil
}

// Snapshot renders the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	state := s.state
	tl := buildTimeline(s.scrub, s.svc.loc, s.svc.clock.Now())
	s.mu.RUnlock()

	return Snapshot{
		SessionID: s.id,
		Path:      s.path,
		Contest:   s.cfg.ContestName,
		Timeline:  tl,
		State:     state,
		Query:     view.Encode(state).Encode(),
		Panel:     s.coord.Panel(state.Action),
		Settling:  s.coord.Pending(),
		Groups:    s.cfg.Groups(),
	}
}

// Subscribe returns a stream of snapshots. Slow readers only see the latest.
// The returned function unsubscribes; Close ends every stream.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.stampLocked()
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// stampLocked renders a snapshot for subscribers. s.subMu must be held, so
// snapshots reach every channel in the order they were taken.
func (s *Session) stampLocked() Snapshot {
	snap := s.Snapshot()
	s.seq++
	snap.Seq = s.seq
	return snap
}

func (s *Session) publish() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		return
	}
	snap := s.stampLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Close unmounts the session: the loop stops, pending and in-flight fetches
// are cancelled and the session cache is dropped.
func (s *Session) Close() {
	s.once.Do(func() {
		_ = s.mailbox.Close()
		ctx, cancel := context.WithTimeout(context.Background(), sessionShutdownTimeout)
		if err := s.loop.Shutdown(ctx); err != nil {
			s.log.Warn(ctx, "session loop did not stop", logger.Error(err))
		}
		cancel()

		s.coord.Close()
		s.cancel()
		s.cache.Purge()

		s.subMu.Lock()
		s.closed = true
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.subMu.Unlock()

		s.svc.forget(s.id)
		metrics.SessionClosed()
		s.log.Info(context.Background(), "session closed")
	})
}
