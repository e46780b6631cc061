package domain

import "time"

// RouteBooking is one confirmed appointment handed to the route optimizer.
type RouteBooking struct {
	ID              string
	LocationID      string
	Coords          Coordinates
	ScheduledStart  time.Time
	ScheduledEnd    time.Time
	ServiceDuration time.Duration
}

func (b RouteBooking) Location() Location {
	return Location{ID: b.LocationID, Coords: b.Coords}
}

// LatestArrival is the last instant the walker may arrive and still finish
// the service inside the scheduled window.
func (b RouteBooking) LatestArrival() time.Time {
	latest := b.ScheduledEnd.Add(-b.ServiceDuration)
	if latest.Before(b.ScheduledStart) {
		return b.ScheduledStart
	}
	return latest
}

// Represents a single visit in an optimized route.
// ArrivalTime is when the walker reaches the location; service starts at the
// later of ArrivalTime and the booking's scheduled start.
type RouteStop struct {
	Sequence           int
	BookingID          string
	LocationID         string
	ArrivalTime        time.Time
	DepartureTime      time.Time
	TravelFromPrevious time.Duration
	ServiceDuration    time.Duration
}

// Represents a walker's ordered visits for one day.
// It is immutable planning data; SavingsVsChronological is never negative.
type OptimizedRoute struct {
	Stops                  []RouteStop
	TotalTravel            time.Duration
	TotalDistanceMeters    int
	SavingsVsChronological time.Duration
	IsOptimized            bool
	Confidence             Confidence
}
