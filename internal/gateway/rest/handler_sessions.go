package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/pkg/model"
)

// SearchRequest is the body of a search submission.
type SearchRequest struct {
	Query string `json:"query"`
}

// ImageLoadedParams are the query parameters of an image load report.
type ImageLoadedParams struct {
	Seq uint64 `schema:"seq"`
}

// handleCreateSession opens a session and returns its first view. A store
// failure on the first load still creates the session; the view carries the error.
// A client that leaves before the first load gets no session.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctrl, view, err := h.sessions.Create(r.Context())
	if ctrl != nil && errors.Is(err, model.ErrCanceled) {
		if derr := h.sessions.Delete(ctrl.ID()); derr != nil {
			slog.Debug("Canceled session already gone", "session", ctrl.ID(), "error", derr)
		}
	}
	if err != nil && (ctrl == nil || !(errors.Is(err, model.ErrStoreUnavailable) || errors.Is(err, catalog.ErrSuperseded))) {
		writeCatalogError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+ctrl.ID())
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := ctrl.Submit(r.Context(), req.Query)
	writeViewResult(w, r, view, err)
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	view, err := ctrl.Retry(r.Context())
	writeViewResult(w, r, view, err)
}

func (h *Handler) handleImageLoaded(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	var params ImageLoadedParams
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		slog.Warn("ImageLoaded: invalid query parameters", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	// Reports for a replaced result set are accepted and dropped.
	ctrl.MarkLoaded(r.PathValue("vehicle"), params.Seq)
	w.WriteHeader(http.StatusNoContent)
}

// writeViewResult writes the outcome of a fetch. A superseded request answers
// with the session's current view since a newer request owns the result.
func writeViewResult(w http.ResponseWriter, r *http.Request, view catalog.View, err error) {
	switch {
	case err == nil, errors.Is(err, catalog.ErrSuperseded):
		writeJSON(w, http.StatusOK, view)
	default:
		if errors.Is(err, model.ErrStoreUnavailable) {
			slog.Warn("Catalog fetch failed", "session", view.Session, "error", err,
				"request_id", server.GetRequestID(r.Context()))
		}
		writeCatalogError(w, err)
	}
}
