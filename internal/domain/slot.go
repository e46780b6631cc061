package domain

import "time"

// AvailableSlot is a bookable start/end pair. End - Start always equals the
// requested service duration.
type AvailableSlot struct {
	Start              time.Time
	End                time.Time
	TravelFromPrevious *time.Duration
	Confidence         Confidence
}
