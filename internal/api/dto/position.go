package dto

import "time"

type PositionRequest struct {
	WalkerID   string     `json:"walker_id"`
	Lat        *float64   `json:"lat"`
	Lon        *float64   `json:"lon"`
	RecordedAt *time.Time `json:"recorded_at"`
}
