package domain

import (
	"fmt"
	"time"
)

// TravelSource identifies which fallback tier produced an estimate.
type TravelSource int

const (
	SourceCache TravelSource = iota + 1
	SourceLivePosition
	SourceRoutingAPI
	SourceGreatCircle
	SourceDefault
)

func (s TravelSource) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceLivePosition:
		return "live_position"
	case SourceRoutingAPI:
		return "routing_api"
	case SourceGreatCircle:
		return "great_circle"
	case SourceDefault:
		return "default"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// TravelTimeEstimate is a best-effort travel duration and distance between
// two locations.
type TravelTimeEstimate struct {
	Duration       time.Duration
	DistanceMeters int
	Confidence     Confidence
	Source         TravelSource
	ComputedAt     time.Time
}

// TravelCacheEntry is the persisted form of a travel-time lookup.
type TravelCacheEntry struct {
	TravelSeconds  int
	DistanceMeters int
	CalculatedAt   time.Time
}

// TravelQuery asks for the travel time from Origin to Destination at AsOf.
// WalkerID is optional and only enables the live-position tier.
type TravelQuery struct {
	WalkerID    string
	Origin      Location
	Destination Location
	AsOf        time.Time
}
