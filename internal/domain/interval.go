package domain

import "time"

// TimeInterval is a half-open [Start, End) span of instants.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

func (i TimeInterval) Valid() bool { return i.End.After(i.Start) }

func (i TimeInterval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps reports whether the two intervals share any instant.
func (i TimeInterval) Overlaps(o TimeInterval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// BusySource distinguishes confirmed bookings from walker-declared blocks.
type BusySource int

const (
	BusyBooking BusySource = iota + 1
	BusyBlock
)

func (s BusySource) String() string {
	switch s {
	case BusyBooking:
		return "booking"
	case BusyBlock:
		return "block"
	default:
		return "unknown"
	}
}

// BusyInterval is a span the walker cannot be booked in. Bookings carry the
// location they happen at; blocks never do.
type BusyInterval struct {
	TimeInterval
	Source   BusySource
	Location *Location
}

// DateRange is an inclusive range of calendar days. Only the year, month and
// day of Start and End are significant.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateOf truncates t to its calendar day, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days lists every calendar day in the range, ascending. An inverted range
// yields nothing.
func (r DateRange) Days() []time.Time {
	start, end := DateOf(r.Start), DateOf(r.End)
	if end.Before(start) {
		return nil
	}

	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
