// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/scoreview/internal/adapters/scoreapi"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/internal/domain/model"
	"github.com/okian/scoreview/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the viewer service.
type Dependencies interface {
	// Open mounts a live session.
	Open(ctx context.Context, path string, q url.Values) (*service.Session, error)

	// Read operations compose one-shot views.
	View(ctx context.Context, path string, q url.Values) (*service.ViewResult, error)
	Export(ctx context.Context, path string, q url.Values) (*scoreapi.Download, error)
	Contests(ctx context.Context, name string) ([]model.Contest, error)
	TeamTrend(ctx context.Context, path, teamID string) ([]model.TrendPoint, error)
}

// Server wires HTTP routes for the viewer API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	contestsHandler *ContestsHandler
	viewHandler     *ViewHandler
	exportHandler   *ExportHandler
	liveHandler     *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		contestsHandler: NewContestsHandler(deps),
		viewHandler:     NewViewHandler(deps),
		exportHandler:   NewExportHandler(deps),
		liveHandler:     NewLiveHandler(deps, log.Named("live")),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/contests", MetricsMiddleware(s.contestsHandler.HandleGetContests, "contests"))
	mux.HandleFunc("/view/", MetricsMiddleware(s.viewHandler.HandleGetView, "view"))
	mux.HandleFunc("/trend/", MetricsMiddleware(s.viewHandler.HandleGetTrend, "trend"))
	mux.HandleFunc("/export/", MetricsMiddleware(s.exportHandler.HandleGetExport, "export"))
	// Upgraded connections are long lived; duration metrics would be meaningless.
	mux.HandleFunc("/live/", s.liveHandler.HandleLive)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and backend errors to a status.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingPath),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrUnknownFormat),
		errors.Is(err, service.ErrUnknownEvent),
		errors.Is(err, scoreapi.ErrInvalidPath):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrMailboxFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrTooManySessions),
		errors.Is(err, service.ErrSessionClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, scoreapi.ErrAPI),
		errors.Is(err, scoreapi.ErrStatus),
		errors.Is(err, scoreapi.ErrMalformed),
		errors.Is(err, scoreapi.ErrTransport):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// contestPath extracts the contest path following prefix, e.g.
// "/view/icpc/2023/nanjing" -> "icpc/2023/nanjing".
func contestPath(r *http.Request, prefix string) (string, error) {
	p := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if p == "" {
		return "", ErrMissingPath
	}
	return p, nil
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return false
	}
	return true
}
