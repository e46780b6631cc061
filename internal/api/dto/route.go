package dto

import (
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

type OptimizeRouteRequest struct {
	WalkerID string `json:"walker_id"`
	// Date is a calendar day, YYYY-MM-DD.
	Date string `json:"date"`
}

type RouteStopResponse struct {
	Sequence                  int       `json:"sequence"`
	BookingID                 string    `json:"booking_id"`
	LocationID                string    `json:"location_id"`
	ArrivalTime               time.Time `json:"arrival_time"`
	DepartureTime             time.Time `json:"departure_time"`
	TravelFromPreviousSeconds int64     `json:"travel_from_previous_seconds"`
	ServiceMinutes            int       `json:"service_minutes"`
}

type OptimizedRouteResponse struct {
	WalkerID                      string              `json:"walker_id"`
	Date                          string              `json:"date"`
	Stops                         []RouteStopResponse `json:"stops"`
	TotalTravelSeconds            int64               `json:"total_travel_seconds"`
	TotalDistanceMeters           int                 `json:"total_distance_meters"`
	SavingsVsChronologicalSeconds int64               `json:"savings_vs_chronological_seconds"`
	IsOptimized                   bool                `json:"is_optimized"`
	Confidence                    domain.Confidence   `json:"confidence"`
}

func NewOptimizedRouteResponse(walkerID, date string, r domain.OptimizedRoute) OptimizedRouteResponse {
	res := OptimizedRouteResponse{
		WalkerID:                      walkerID,
		Date:                          date,
		Stops:                         make([]RouteStopResponse, 0, len(r.Stops)),
		TotalTravelSeconds:            int64(r.TotalTravel / time.Second),
		TotalDistanceMeters:           r.TotalDistanceMeters,
		SavingsVsChronologicalSeconds: int64(r.SavingsVsChronological / time.Second),
		IsOptimized:                   r.IsOptimized,
		Confidence:                    r.Confidence,
	}
	for _, s := range r.Stops {
		res.Stops = append(res.Stops, RouteStopResponse{
			Sequence:                  s.Sequence,
			BookingID:                 s.BookingID,
			LocationID:                s.LocationID,
			ArrivalTime:               s.ArrivalTime,
			DepartureTime:             s.DepartureTime,
			TravelFromPreviousSeconds: int64(s.TravelFromPrevious / time.Second),
			ServiceMinutes:            int(s.ServiceDuration / time.Minute),
		})
	}
	return res
}
