package api

import (
	"mime"
	"net/http"
	"strconv"
)

// ExportHandler streams contest exports.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleGetExport handles GET /export/{path}?format&group&t.
func (h *ExportHandler) HandleGetExport(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	path, err := contestPath(r, "/export/")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dl, err := h.deps.Export(r.Context(), path, r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Body)
}
