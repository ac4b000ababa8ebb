package api

import (
	"net/http"

	"github.com/okian/scoreview/internal/domain/model"
)

// ContestsHandler lists contests.
type ContestsHandler struct {
	deps Dependencies
}

// NewContestsHandler creates a new contests handler.
func NewContestsHandler(deps Dependencies) *ContestsHandler {
	return &ContestsHandler{deps: deps}
}

type contestsResponse struct {
	Contests []model.Contest `json:"contests"`
}

// HandleGetContests handles GET /contests?contest_name=.
func (h *ContestsHandler) HandleGetContests(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	contests, err := h.deps.Contests(r.Context(), r.URL.Query().Get("contest_name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if contests == nil {
		contests = []model.Contest{}
	}
	writeJSON(w, http.StatusOK, contestsResponse{Contests: contests})
}
