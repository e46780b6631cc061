package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// AvailabilityRequest describes one slot search. Now is the only clock the
// engine reads; identical requests produce identical slots.
type AvailabilityRequest struct {
	WalkerID        string
	Range           domain.DateRange
	ServiceDuration time.Duration
	// Target is where the new appointment would happen. Without it every
	// booking-side buffer uses the default travel time.
	Target *domain.Location
	Now    time.Time
}

func (r AvailabilityRequest) validate() error {
	if strings.TrimSpace(r.WalkerID) == "" {
		return fmt.Errorf("%w: walker id must be non-empty", domain.ErrInvalidInput)
	}
	if r.ServiceDuration <= 0 {
		return fmt.Errorf("%w: service duration must be positive, got %s", domain.ErrInvalidInput, r.ServiceDuration)
	}
	if domain.DateOf(r.Range.End).Before(domain.DateOf(r.Range.Start)) {
		return fmt.Errorf("%w: date range end %s is before start %s",
			domain.ErrInvalidInput, r.Range.End.Format(time.DateOnly), r.Range.Start.Format(time.DateOnly))
	}
	if r.Now.IsZero() {
		return fmt.Errorf("%w: now must be set", domain.ErrInvalidInput)
	}
	return nil
}

// AvailabilityEngine enumerates bookable slots from a walker's working hours
// and busy calendar, sizing travel buffers around existing bookings.
type AvailabilityEngine struct {
	repo     ports.ScheduleRepository
	provider ports.TravelTimeProvider
	logger   *zap.Logger
}

func NewAvailabilityEngine(repo ports.ScheduleRepository, provider ports.TravelTimeProvider, logger *zap.Logger) *AvailabilityEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityEngine{repo: repo, provider: provider, logger: logger}
}

// FindSlots returns the valid slots for every day in the request range,
// ascending by start. An empty result is not an error; only malformed input,
// repository failures and cancellation are.
func (e *AvailabilityEngine) FindSlots(
	ctx context.Context,
	req AvailabilityRequest,
	cfg config.EngineConfig,
) ([]domain.AvailableSlot, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("find slots: %w", err)
	}

	windows, err := e.repo.WorkingHours(ctx, req.WalkerID)
	if err != nil {
		return nil, fmt.Errorf("find slots: walker %q: %w", req.WalkerID, err)
	}

	byWeekday := make(map[time.Weekday]domain.WorkingHoursWindow, len(windows))
	for _, w := range windows {
		if _, seen := byWeekday[w.Weekday]; w.Active && !seen {
			byWeekday[w.Weekday] = w
		}
	}

	earliest := req.Now.Add(cfg.MinNotice())
	slots := make([]domain.AvailableSlot, 0)

	for _, day := range req.Range.Days() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, ok := byWeekday[day.Weekday()]
		if !ok {
			continue
		}

		open, err := w.OpenInterval(day)
		if err != nil {
			e.logger.Warn("skipping day with unusable working hours",
				zap.String("walker_id", req.WalkerID),
				zap.String("day", day.Format(time.DateOnly)),
				zap.Error(err),
			)
			continue
		}
		if beyondAdvance(day, w.Timezone, req.Now, cfg.MaxAdvanceDays()) || !open.End.After(earliest) {
			continue
		}

		busy, err := e.repo.BusyIntervals(ctx, req.WalkerID, open.Start.Add(-busyLookaround), open.End.Add(busyLookaround))
		if err != nil {
			return nil, fmt.Errorf("find slots: walker %q on %s: %w", req.WalkerID, day.Format(time.DateOnly), err)
		}

		for _, g := range freeGaps(open, unionBusy(busy)) {
			slots = append(slots, e.slotsInGap(ctx, req, cfg, open, earliest, g)...)
		}
	}

	// Cancellation mid-day leaves buffers sized from defaults; do not return them.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

// busyLookaround widens the busy-interval query past the working window so
// appointments just outside it still size the edge buffers.
const busyLookaround = 12 * time.Hour

// beyondAdvance reports whether day lies past the last bookable date, counted
// from today in the walker's timezone.
func beyondAdvance(day time.Time, tz string, now time.Time, maxAdvanceDays int) bool {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	last := domain.DateOf(now.In(loc)).AddDate(0, 0, maxAdvanceDays)
	return domain.DateOf(day).After(last)
}

func (e *AvailabilityEngine) slotsInGap(
	ctx context.Context,
	req AvailabilityRequest,
	cfg config.EngineConfig,
	window domain.TimeInterval,
	earliest time.Time,
	g gap,
) []domain.AvailableSlot {
	before := e.sideBuffer(ctx, req, cfg, g.prev, g.Start, true)
	after := e.sideBuffer(ctx, req, cfg, g.next, g.End, false)

	lo := g.Start.Add(before.buffer)
	if lo.Before(window.Start) {
		lo = window.Start
	}
	hi := g.End.Add(-after.buffer)
	if hi.After(window.End) {
		hi = window.End
	}
	if hi.Sub(lo) < req.ServiceDuration+cfg.MinBuffer() {
		return nil
	}
	if lo.Before(earliest) {
		lo = earliest
	}

	conf := domain.MinConfidence(before.confidence, after.confidence)
	step := cfg.SlotInterval()

	var out []domain.AvailableSlot
	for start := gridStart(window.Start, lo, step); !start.Add(req.ServiceDuration).After(hi); start = start.Add(step) {
		slot := domain.AvailableSlot{
			Start:      start,
			End:        start.Add(req.ServiceDuration),
			Confidence: conf,
		}
		if before.travel != nil {
			travel := *before.travel
			slot.TravelFromPrevious = &travel
		}
		out = append(out, slot)
	}
	return out
}

type bufferSide struct {
	buffer     time.Duration
	confidence domain.Confidence
	// travel is set only when the side borders a booking.
	travel *time.Duration
}

// sideBuffer sizes the buffer on one side of a gap. at is the gap edge the
// walker would leave from (inbound) or arrive at (outbound).
func (e *AvailabilityEngine) sideBuffer(
	ctx context.Context,
	req AvailabilityRequest,
	cfg config.EngineConfig,
	b *border,
	at time.Time,
	inbound bool,
) bufferSide {
	if b == nil {
		return bufferSide{confidence: domain.ConfidenceHigh}
	}

	fallback := bufferSide{buffer: cfg.DefaultTravel(), confidence: domain.ConfidenceLow}
	if b.source != domain.BusyBooking {
		return fallback
	}
	if !placed(b.location) || !placed(req.Target) {
		fallback.travel = &fallback.buffer
		return fallback
	}

	q := domain.TravelQuery{Origin: *req.Target, Destination: *b.location, AsOf: at}
	if inbound {
		// Only the inbound leg starts from where the walker actually is.
		q = domain.TravelQuery{WalkerID: req.WalkerID, Origin: *b.location, Destination: *req.Target, AsOf: at}
	}
	est := e.provider.Estimate(ctx, q)

	buffer := est.Duration
	if buffer < cfg.MinBuffer() {
		buffer = cfg.MinBuffer()
	}
	travel := est.Duration
	return bufferSide{buffer: buffer, confidence: est.Confidence, travel: &travel}
}

func placed(l *domain.Location) bool {
	return l != nil && (l.ID != "" || l.Known())
}
