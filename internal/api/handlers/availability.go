package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/api/dto"
	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/services"
	"go.uber.org/zap"
)

type SlotFinder interface {
	FindSlots(ctx context.Context, req services.AvailabilityRequest, cfg config.EngineConfig) ([]domain.AvailableSlot, error)
}

// AvailabilityHandler serves GET /availability.
type AvailabilityHandler struct {
	Engine SlotFinder
	Config config.EngineConfig
	Now    func() time.Time
	Logger *zap.Logger
}

func (h *AvailabilityHandler) Find(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	req, err := h.parse(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	slots, err := h.Engine.FindSlots(r.Context(), req, h.Config)
	if err != nil {
		writeServiceError(w, r, h.Logger, "find slots", err)
		return
	}

	res := dto.AvailabilityResponse{
		WalkerID:        req.WalkerID,
		ServiceDuration: int(req.ServiceDuration / time.Minute),
		Slots:           make([]dto.SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		res.Slots = append(res.Slots, dto.NewSlotResponse(s))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *AvailabilityHandler) parse(q url.Values) (services.AvailabilityRequest, error) {
	req := services.AvailabilityRequest{WalkerID: strings.TrimSpace(q.Get("walker_id"))}
	if req.WalkerID == "" {
		return req, fmt.Errorf("walker_id is required")
	}

	from, err := time.Parse(time.DateOnly, q.Get("from"))
	if err != nil {
		return req, fmt.Errorf("from must be a YYYY-MM-DD date")
	}
	to := from
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse(time.DateOnly, v); err != nil {
			return req, fmt.Errorf("to must be a YYYY-MM-DD date")
		}
	}
	req.Range = domain.DateRange{Start: from, End: to}

	minutes, err := strconv.Atoi(q.Get("duration_minutes"))
	if err != nil {
		return req, fmt.Errorf("duration_minutes must be an integer")
	}
	req.ServiceDuration = time.Duration(minutes) * time.Minute

	target, err := parseTarget(q)
	if err != nil {
		return req, err
	}
	req.Target = target

	req.Now = h.Now()
	if v := q.Get("now"); v != "" {
		if req.Now, err = time.Parse(time.RFC3339, v); err != nil {
			return req, fmt.Errorf("now must be an RFC 3339 timestamp")
		}
	}
	return req, nil
}

// parseTarget reads location_id and the optional lat/lon pair. No target is
// not an error.
func parseTarget(q url.Values) (*domain.Location, error) {
	id := strings.TrimSpace(q.Get("location_id"))
	latStr, lonStr := q.Get("lat"), q.Get("lon")

	if (latStr == "") != (lonStr == "") {
		return nil, fmt.Errorf("lat and lon must be given together")
	}
	if id == "" && latStr == "" {
		return nil, nil
	}

	loc := &domain.Location{ID: id}
	if latStr != "" {
		coords, err := parseCoords(latStr, lonStr)
		if err != nil {
			return nil, err
		}
		loc.Coords = coords
	}
	return loc, nil
}

func parseCoords(latStr, lonStr string) (domain.Coordinates, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("lon must be a number")
	}
	return checkCoords(lat, lon)
}

func checkCoords(lat, lon float64) (domain.Coordinates, error) {
	if lat < -90 || lat > 90 {
		return domain.Coordinates{}, fmt.Errorf("lat must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return domain.Coordinates{}, fmt.Errorf("lon must be between -180 and 180")
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
