package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/syntrixbase/showroom/internal/catalog"
)

// VehicleQuery holds the query parameters of GET /api/v1/vehicles.
type VehicleQuery struct {
	Q string `schema:"q"`
}

// VehicleList is the response of GET /api/v1/vehicles.
type VehicleList struct {
	Query    string            `json:"query"`
	Vehicles []catalog.Vehicle `json:"vehicles"`
}

func (h *Handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	var q VehicleQuery
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		slog.Warn("ListVehicles: invalid query parameters", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	vehicles, err := h.catalog.SearchByNamePrefix(r.Context(), q.Q)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VehicleList{Query: q.Q, Vehicles: vehicles})
}
