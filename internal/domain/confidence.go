package domain

import "fmt"

// Confidence is the qualitative reliability of a travel-time estimate.
// The zero value is invalid; ordering follows reliability (Low < Medium < High).
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

func (c Confidence) MarshalText() ([]byte, error) {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("marshal confidence: invalid value %d", int(c))
	}
}

// MinConfidence returns the less reliable of two confidences.
func MinConfidence(a, b Confidence) Confidence {
	if a < b {
		return a
	}
	return b
}
