package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/api/dto"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// PositionHandler records walker GPS fixes. A nil Feed means live positions
// are not configured.
type PositionHandler struct {
	Feed   ports.PositionFeed
	Now    func() time.Time
	Logger *zap.Logger
}

func (h *PositionHandler) Record(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if h.Feed == nil {
		writeError(w, r, http.StatusServiceUnavailable, "live positions are not configured")
		return
	}

	var req dto.PositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	walkerID := strings.TrimSpace(req.WalkerID)
	if walkerID == "" {
		writeError(w, r, http.StatusBadRequest, "walker_id is required")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	coords, err := checkCoords(*req.Lat, *req.Lon)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	recordedAt := h.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	if err := h.Feed.Record(r.Context(), walkerID, ports.Position{Coords: coords, RecordedAt: recordedAt}); err != nil {
		writeServiceError(w, r, h.Logger, "record position", err)
		return
	}

	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}
