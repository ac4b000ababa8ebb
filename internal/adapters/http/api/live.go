package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/pkg/logger"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveReadLimit  = 4096
)

// Live message types sent to the viewer.
const (
	liveSnapshot = "snapshot"
	liveError    = "error"
)

type liveMessage struct {
	Type     string            `json:"type"`
	Snapshot *service.Snapshot `json:"snapshot,omitempty"`
	Error    *errorResponse    `json:"error,omitempty"`
}

// LiveHandler mounts a session per WebSocket connection. Events are read as
// JSON and every state change is pushed back as a snapshot.
type LiveHandler struct {
	deps     Dependencies
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Dependencies, log logger.Logger) *LiveHandler {
	return &LiveHandler{
		deps: deps,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleLive handles GET /live/{path}. The session is opened before the
// upgrade so a bad path or state is reported as a plain HTTP error.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	path, err := contestPath(r, "/live/")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sess, err := h.deps.Open(r.Context(), path, r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer sess.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(r.Context(), "failed to upgrade websocket", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	log := h.log.With(logger.String("session", sess.ID()), logger.String("path", path))
	log.Debug(r.Context(), "live viewer connected")

	snaps, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writer(ctx, conn, snaps, errs, log)
	}()

	h.reader(ctx, conn, sess, errs, log)
	cancel()
	wg.Wait()
	log.Debug(r.Context(), "live viewer disconnected")
}

func (h *LiveHandler) reader(ctx context.Context, conn *websocket.Conn, sess *service.Session, errs chan<- error, log logger.Logger) {
	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var e service.Event
		if err := conn.ReadJSON(&e); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn(ctx, "live read failed", logger.Error(err))
			}
			return
		}
		if err := sess.Dispatch(ctx, e); err != nil {
			if errors.Is(err, service.ErrSessionClosed) {
				return
			}
			select {
			case errs <- err:
			default:
			}
		}
	}
}

func (h *LiveHandler) writer(ctx context.Context, conn *websocket.Conn, snaps <-chan service.Snapshot, errs <-chan error, log logger.Logger) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		var msg liveMessage
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(liveWriteWait))
			return
		case snap, ok := <-snaps:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(liveWriteWait))
				return
			}
			msg = liveMessage{Type: liveSnapshot, Snapshot: &snap}
		case err := <-errs:
			_, code := classify(err)
			msg = liveMessage{Type: liveError, Error: &errorResponse{Code: code, Message: err.Error()}}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Warn(ctx, "live write failed", logger.Error(err))
			return
		}
	}
}
