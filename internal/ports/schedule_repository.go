package ports

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// Port: read-only access to a walker's calendar.
type ScheduleRepository interface {
	// Retrieve the walker's weekly working hours.
	WorkingHours(ctx context.Context, walkerID string) ([]domain.WorkingHoursWindow, error)
	// Retrieve bookings and blocks overlapping [from, to).
	BusyIntervals(ctx context.Context, walkerID string, from, to time.Time) ([]domain.BusyInterval, error)
}

// Port: confirmed bookings with coordinates, for route optimization.
type RouteBookingRepository interface {
	// Retrieve the walker's confirmed bookings starting on the given UTC day.
	RouteBookings(ctx context.Context, walkerID string, day time.Time) ([]domain.RouteBooking, error)
}
