package services

import (
	"sort"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// border is what sits on one side of a free gap. A nil border is the edge of
// the working window.
type border struct {
	source   domain.BusySource
	location *domain.Location
}

// busySpan is a union of one or more overlapping busy intervals. first is the
// constituent that starts the span, last the one that ends it.
type busySpan struct {
	domain.TimeInterval
	first border
	last  border
}

type gap struct {
	domain.TimeInterval
	prev *border
	next *border
}

// unionBusy sorts the intervals by start and merges any that overlap or
// touch. The input slice is not modified.
func unionBusy(busy []domain.BusyInterval) []busySpan {
	sorted := make([]domain.BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.Valid() {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	spans := make([]busySpan, 0, len(sorted))
	for _, b := range sorted {
		side := border{source: b.Source, location: b.Location}

		if n := len(spans); n > 0 && !b.Start.After(spans[n-1].End) {
			cur := &spans[n-1]
			if b.End.After(cur.End) {
				cur.End = b.End
				cur.last = side
			}
			continue
		}

		spans = append(spans, busySpan{
			TimeInterval: b.TimeInterval,
			first:        side,
			last:         side,
		})
	}
	return spans
}

// freeGaps walks the unioned spans and returns the free gaps that reach into
// window, in order. Spans must come from unionBusy. A gap touching a window
// edge starts at the last span ending at or before the open (or ends at the
// first span starting at or after the close) when there is one, so buffers
// are measured from the walker's actual previous and next appointments.
func freeGaps(window domain.TimeInterval, spans []busySpan) []gap {
	var (
		gaps     []gap
		cursor   = window.Start
		prev     *border
		trailing *busySpan
	)

	for i := range spans {
		s := spans[i]
		if !s.End.After(window.Start) {
			cursor = s.End
			prev = &spans[i].last
			continue
		}
		if !s.Start.Before(window.End) {
			trailing = &spans[i]
			break
		}

		if s.Start.After(cursor) && s.Start.After(window.Start) {
			gaps = append(gaps, gap{
				TimeInterval: domain.TimeInterval{Start: cursor, End: s.Start},
				prev:         prev,
				next:         &spans[i].first,
			})
		}
		if s.End.After(cursor) {
			cursor = s.End
		}
		prev = &spans[i].last
	}

	if !window.End.After(cursor) {
		return gaps
	}

	last := gap{TimeInterval: domain.TimeInterval{Start: cursor, End: window.End}, prev: prev}
	if trailing != nil {
		last.End = trailing.Start
		last.next = &trailing.first
	}
	return append(gaps, last)
}

// gridStart returns the first instant on the grid anchored at anchor that is
// not before t.
func gridStart(anchor, t time.Time, step time.Duration) time.Time {
	if !t.After(anchor) {
		return anchor
	}
	n := (t.Sub(anchor) + step - 1) / step
	return anchor.Add(n * step)
}
