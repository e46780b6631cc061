package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/api/dto"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

type RouteOptimizer interface {
	Optimize(ctx context.Context, bookings []domain.RouteBooking) (domain.OptimizedRoute, error)
}

// RouteHandler serves POST /routes/optimize for one walker's day.
type RouteHandler struct {
	Bookings  ports.RouteBookingRepository
	Optimizer RouteOptimizer
	Logger    *zap.Logger
}

func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	walkerID := strings.TrimSpace(req.WalkerID)
	if walkerID == "" {
		writeError(w, r, http.StatusBadRequest, "walker_id is required")
		return
	}
	day, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}

	bookings, err := h.Bookings.RouteBookings(r.Context(), walkerID, day)
	if err != nil {
		writeServiceError(w, r, h.Logger, "route bookings", err)
		return
	}

	route, err := h.Optimizer.Optimize(r.Context(), bookings)
	if err != nil {
		writeServiceError(w, r, h.Logger, "optimize route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizedRouteResponse(walkerID, req.Date, route))
}
