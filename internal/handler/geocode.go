package handler

import (
	"net/http"

	"github.com/spectralvoice/hauntify/internal/geocode"
	"github.com/spectralvoice/hauntify/internal/middleware"
	"github.com/spectralvoice/hauntify/pkg/logger"
)

// GeocodeHandler resolves place names to coordinates.
type GeocodeHandler struct {
	client *geocode.Client
	logger *logger.Logger
}

// NewGeocodeHandler creates a geocode handler.
func NewGeocodeHandler(client *geocode.Client, log *logger.Logger) *GeocodeHandler {
	return &GeocodeHandler{client: client, logger: log}
}

// Geocode handles GET /api/v1/geocode?q=<place>.
func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := middleware.ValidatePlaceQuery(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hit, err := h.client.Lookup(r.Context(), q)
	if err != nil {
		h.logger.Error("geocode lookup failed", "place", q, "error", err)
		writeError(w, http.StatusBadGateway, "geocoding service unavailable")
		return
	}
	if hit == nil {
		writeError(w, http.StatusNotFound, "no match for place")
		return
	}

	// Place coordinates do not move; let clients cache aggressively.
	w.Header().Set("Cache-Control", "public, max-age=2592000")
	writeJSON(w, http.StatusOK, hit)
}
