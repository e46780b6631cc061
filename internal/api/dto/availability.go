package dto

import (
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

type SlotResponse struct {
	Start                     time.Time         `json:"start"`
	End                       time.Time         `json:"end"`
	TravelFromPreviousSeconds *int64            `json:"travel_from_previous_seconds,omitempty"`
	Confidence                domain.Confidence `json:"confidence"`
}

type AvailabilityResponse struct {
	WalkerID        string         `json:"walker_id"`
	ServiceDuration int            `json:"duration_minutes"`
	Slots           []SlotResponse `json:"slots"`
}

func NewSlotResponse(s domain.AvailableSlot) SlotResponse {
	res := SlotResponse{Start: s.Start, End: s.End, Confidence: s.Confidence}
	if s.TravelFromPrevious != nil {
		secs := int64(*s.TravelFromPrevious / time.Second)
		res.TravelFromPreviousSeconds = &secs
	}
	return res
}
