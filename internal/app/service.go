// Package service composes scoreboard views for the HTTP API: one-shot views,
// exports, and live sessions that follow a viewer's scrubbing and navigation.
package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	"github.com/okian/scoreview/internal/domain/fetch"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/internal/domain/timeline"
	"github.com/okian/scoreview/internal/domain/view"
	"github.com/okian/scoreview/pkg/logger"
)

// Service owns the backend client and the live sessions.
type Service struct {
	mu sync.RWMutex

	backend Backend
	// sessionBackend serves live sessions, which cache on their own.
	sessionBackend Backend

	// Configuration
	settleDelay time.Duration
	cacheTTL    time.Duration
	cacheSize   int
	pageSize    int
	mailboxSize int
	maxSessions int
	loc         *time.Location
	clock       clockwork.Clock

	// State
	sessions map[string]*Session
	opened   int64
	stopped  bool

	logger logger.Logger
}

// New constructs a Service reading from backend.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend:     backend,
		settleDelay: fetch.DefaultSettleDelay,
		cacheTTL:    cache.DefaultTTL,
		cacheSize:   cache.DefaultMaxEntries,
		pageSize:    view.DefaultPageSize,
		mailboxSize: 64,
		loc:         time.UTC,
		clock:       clockwork.NewRealClock(),
		sessions:    make(map[string]*Session),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessionBackend == nil {
		s.sessionBackend = backend
	}
	return s
}

// Open mounts a live session for the contest at path. The view state is
// decoded from q; without a time the session starts at the end of the contest.
// The initial load is issued immediately.
func (s *Service) Open(ctx context.Context, path string, q url.Values) (*Session, error) {
	path = normalizePath(path)
	state, err := view.Decode(q, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	s.mu.RLock()
	err = s.admitLocked()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	cfg, err := s.sessionBackend.Config(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	sess := newSession(s, path, cfg, state)
	s.mu.Lock()
	// Stop or other opens may have run while the config was fetched.
	if err := s.admitLocked(); err != nil {
		s.mu.Unlock()
		sess.cancel()
		return nil, err
	}
	s.sessions[sess.ID()] = sess
	s.opened++
	s.mu.Unlock()

	sess.start()
	s.logger.Info(ctx, "session opened",
		logger.String("session", sess.ID()),
		logger.String("path", path),
		logger.String("query", view.Encode(state).Encode()))
	return sess, nil
}

// admitLocked reports whether another session may open. s.mu must be held.
func (s *Service) admitLocked() error {
	if s.stopped {
		return ErrSessionClosed
	}
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return ErrTooManySessions
	}
	return nil
}

// Session returns a live session by id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// ViewResult is a composed one-shot view.
type ViewResult struct {
	Contest  string              `json:"contest"`
	Groups   []model.GroupOption `json:"groups"`
	Banner   string              `json:"banner,omitempty"`
	Timeline TimelineView        `json:"timeline"`
	State    view.State          `json:"state"`
	Query    string              `json:"query"`
	Data     any                 `json:"data"`
}

// View composes the view described by q without debouncing. Failures are
// returned rather than shown inline.
func (s *Service) View(ctx context.Context, path string, q url.Values) (*ViewResult, error) {
	path = normalizePath(path)
	state, err := view.Decode(q, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	cfg, err := s.backend.Config(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	scrub := timeline.NewScrubber(cfg.Window())
	state = resolveTime(state, scrub)

	f := &viewFetcher{backend: s.backend, path: path, cfg: cfg}
	data, err := f.Fetch(ctx, state.Key())
	if err != nil {
		return nil, err
	}
	return &ViewResult{
		Contest:  cfg.ContestName,
		Groups:   cfg.Groups(),
		Banner:   cfg.BannerURL(),
		Timeline: buildTimeline(scrub, s.loc, s.clock.Now()),
		State:    state,
		Query:    view.Encode(state).Encode(),
		Data:     data,
	}, nil
}

// Export downloads the contest as q's format at q's group and time. Without a
// time the export is taken at the end of the contest.
func (s *Service) Export(ctx context.Context, path string, q url.Values) (*scoreapi.Download, error) {
	path = normalizePath(path)
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = scoreapi.ExportFormats[0]
	}
	if !slices.Contains(scoreapi.ExportFormats, format) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	state, err := view.Decode(q, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !state.HasTime {
		cfg, err := s.backend.Config(ctx, path, nil)
		if err != nil {
			return nil, err
		}
		state = resolveTime(state, timeline.NewScrubber(cfg.Window()))
	}
	eq := scoreapi.ExportQuery{
		Format: format,
		Group:  state.Group,
		T:      scoreapi.Time(state.RelativeMs),
	}
	return s.backend.Export(ctx, path, eq)
}

// Contests lists contests whose name matches name.
func (s *Service) Contests(ctx context.Context, name string) ([]model.Contest, error) {
	return s.backend.Contests(ctx, scoreapi.ContestsQuery{ContestName: name})
}

// TeamTrend returns a team's place history.
func (s *Service) TeamTrend(ctx context.Context, path, teamID string) ([]model.TrendPoint, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrInvalidRequest)
	}
	return s.backend.TeamTrend(ctx, normalizePath(path), teamID)
}

// Stop closes every live session.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.Close()
	}
	s.logger.Info(ctx, "service stopped", logger.Int("sessions_closed", len(open)))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"sessions":        len(s.sessions),
		"sessionsOpened":  s.opened,
		"maxSessions":     s.maxSessions,
		"settleDelayMs":   s.settleDelay.Milliseconds(),
		"sessionCacheTtl": s.cacheTTL.String(),
		"pageSize":        s.pageSize,
		"mailboxSize":     s.mailboxSize,
		"timezone":        s.loc.String(),
	}
}

func normalizePath(path string) string {
	return strings.Trim(path, "/")
}

// resolveTime defaults an unresolved time to the end of the contest and
// clamps the state and scrubber to the window.
func resolveTime(state view.State, scrub *timeline.Scrubber) view.State {
	ms := scrub.Window().DurationMs()
	if state.HasTime {
		ms = state.RelativeMs
	}
	ms, _ = scrub.SeekMs(ms)
	state, _ = view.Reduce(state, view.TimeChanged{RelativeMs: ms})
	return state
}

// TimelineView is the rendered progress bar.
type TimelineView struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Status     timeline.Status `json:"status"`
	Duration   string          `json:"duration"`
	Elapsed    string          `json:"elapsed"`
	Remaining  string          `json:"remaining"`
	Position   float64         `json:"position"`
	Committed  float64         `json:"committed"`
	RelativeMs int64           `json:"relative_ms"`
	Dragging   bool            `json:"dragging"`
}

func buildTimeline(scrub *timeline.Scrubber, loc *time.Location, now time.Time) TimelineView {
	w := scrub.Window()
	live := scrub.LiveMs()
	return TimelineView{
		Start:      timeline.AbsoluteLabel(w.Start, loc),
		End:        timeline.AbsoluteLabel(w.End, loc),
		Status:     timeline.StatusAt(w, now),
		Duration:   timeline.DurationLabel(w),
		Elapsed:    timeline.ToClock(live),
		Remaining:  timeline.Remaining(w.DurationMs(), live),
		Position:   scrub.Live(),
		Committed:  scrub.Committed(),
		RelativeMs: scrub.CommittedMs(),
		Dragging:   scrub.Dragging(),
	}
}
