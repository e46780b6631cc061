package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse clock time %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("parse clock time %q: invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("parse clock time %q: invalid minute", s)
	}

	return ClockTime(h*60 + m), nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// WorkingHoursWindow is a walker's open time for one day of the week, in the
// walker's own timezone.
type WorkingHoursWindow struct {
	Weekday  time.Weekday
	Start    ClockTime
	End      ClockTime
	Timezone string
	Active   bool
}

// OpenInterval converts the window to a UTC interval on the given calendar
// day. Only the date part of day is used.
func (w WorkingHoursWindow) OpenInterval(day time.Time) (TimeInterval, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return TimeInterval{}, fmt.Errorf("open interval: load timezone %q: %w", w.Timezone, err)
	}

	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	start := time.Date(y, m, d, int(w.Start)/60, int(w.Start)%60, 0, 0, loc)
	end := time.Date(y, m, d, int(w.End)/60, int(w.End)%60, 0, 0, loc)
	if w.End == 24*60 {
		end = midnight.AddDate(0, 0, 1)
	}

	iv := TimeInterval{Start: start.UTC(), End: end.UTC()}
	if !iv.Valid() {
		return TimeInterval{}, fmt.Errorf("open interval: window %s-%s is empty", w.Start, w.End)
	}
	return iv, nil
}
