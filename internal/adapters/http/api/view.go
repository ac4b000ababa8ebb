package api

import (
	"net/http"

	"github.com/okian/scoreview/internal/domain/model"
)

// ViewHandler serves composed one-shot views.
type ViewHandler struct {
	deps Dependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps Dependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleGetView handles GET /view/{path}. The query carries the view state
// in the same parameters a viewer URL does.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	path, err := contestPath(r, "/view/")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.View(r.Context(), path, r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type trendResponse struct {
	TeamID string             `json:"team_id"`
	Trend  []model.TrendPoint `json:"trend"`
}

// HandleGetTrend handles GET /trend/{path}?team_id=.
func (h *ViewHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	path, err := contestPath(r, "/trend/")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	teamID := r.URL.Query().Get("team_id")
	trend, err := h.deps.TeamTrend(r.Context(), path, teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trend == nil {
		trend = []model.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, trendResponse{TeamID: teamID, Trend: trend})
}
