package rest

import (
	"log/slog"
	"net/http"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			slog.Warn("Health check: store unreachable", "error", err)
			writeError(w, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Store unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
