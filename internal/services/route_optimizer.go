package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// RouteOptimizer orders a walker's confirmed bookings for one day to reduce
// travel, using a savings heuristic adapted to an open route.
//
// The chronological order is the baseline. It is returned unchanged, with
// IsOptimized false, for zero or one booking and whenever the heuristic finds
// no strictly shorter feasible order.
type RouteOptimizer struct {
	provider    ports.TravelTimeProvider
	concurrency int
	logger      *zap.Logger
}

func NewRouteOptimizer(provider ports.TravelTimeProvider, concurrency int, logger *zap.Logger) *RouteOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteOptimizer{provider: provider, concurrency: concurrency, logger: logger}
}

func (o *RouteOptimizer) Optimize(ctx context.Context, bookings []domain.RouteBooking) (domain.OptimizedRoute, error) {
	if err := validateRouteBookings(bookings); err != nil {
		return domain.OptimizedRoute{}, fmt.Errorf("optimize route: %w", err)
	}

	stops := append([]domain.RouteBooking(nil), bookings...)
	sort.SliceStable(stops, func(i, j int) bool {
		if !stops[i].ScheduledStart.Equal(stops[j].ScheduledStart) {
			return stops[i].ScheduledStart.Before(stops[j].ScheduledStart)
		}
		return stops[i].ID < stops[j].ID
	})

	chronological := make([]int, len(stops))
	for i := range chronological {
		chronological[i] = i
	}

	if len(stops) < 2 {
		p := &routePlanner{stops: stops}
		return p.route(chronological, 0, false), nil
	}

	matrix, err := buildTravelMatrix(ctx, o.provider, stops, o.concurrency)
	if err != nil {
		return domain.OptimizedRoute{}, err
	}
	p := &routePlanner{stops: stops, matrix: matrix}

	baseline := p.walk(chronological)
	candidate := p.insertLeftovers(p.mergeFragments(p.rankSavings()))
	optimized := p.walk(candidate)

	o.logger.Debug("route optimized",
		zap.Int("stops", len(stops)),
		zap.Duration("chronological_travel", baseline.travel),
		zap.Duration("optimized_travel", optimized.travel),
		zap.Bool("feasible", optimized.feasible),
	)

	if !optimized.feasible || optimized.travel >= baseline.travel {
		return p.route(chronological, 0, false), nil
	}
	return p.route(candidate, baseline.travel-optimized.travel, true), nil
}

func validateRouteBookings(bookings []domain.RouteBooking) error {
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("%w: booking id must be non-empty", domain.ErrInvalidInput)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: duplicate booking %q", domain.ErrInvalidInput, b.ID)
		}
		seen[b.ID] = struct{}{}

		if b.ScheduledEnd.Before(b.ScheduledStart) {
			return fmt.Errorf("%w: booking %q ends before it starts", domain.ErrInvalidInput, b.ID)
		}
		if b.ServiceDuration < 0 {
			return fmt.Errorf("%w: booking %q has negative service duration", domain.ErrInvalidInput, b.ID)
		}
	}
	return nil
}

// routePlanner is the per-call working state of one optimization.
type routePlanner struct {
	stops  []domain.RouteBooking
	matrix travelMatrix
}

type routeWalk struct {
	stops      []domain.RouteStop
	travel     time.Duration
	meters     int
	confidence domain.Confidence
	feasible   bool
}

// walk propagates timing along seq. The walker reaches the first stop at its
// scheduled start and waits whenever it arrives early; a stop reached after
// its latest arrival makes the walk infeasible.
func (p *routePlanner) walk(seq []int) routeWalk {
	w := routeWalk{
		stops:      make([]domain.RouteStop, 0, len(seq)),
		confidence: domain.ConfidenceHigh,
		feasible:   true,
	}

	var departure time.Time
	for k, idx := range seq {
		b := p.stops[idx]

		arrival := b.ScheduledStart
		var leg time.Duration
		if k > 0 {
			est := p.matrix.at(seq[k-1], idx)
			leg = est.Duration
			arrival = departure.Add(leg)

			w.travel += leg
			w.meters += est.DistanceMeters
			w.confidence = domain.MinConfidence(w.confidence, est.Confidence)
		}
		if arrival.After(b.LatestArrival()) {
			w.feasible = false
		}

		serviceStart := arrival
		if serviceStart.Before(b.ScheduledStart) {
			serviceStart = b.ScheduledStart
		}
		departure = serviceStart.Add(b.ServiceDuration)

		w.stops = append(w.stops, domain.RouteStop{
			Sequence:           k + 1,
			BookingID:          b.ID,
			LocationID:         b.LocationID,
			ArrivalTime:        arrival,
			DepartureTime:      departure,
			TravelFromPrevious: leg,
			ServiceDuration:    b.ServiceDuration,
		})
	}
	return w
}

func (p *routePlanner) feasible(seq []int) bool { return p.walk(seq).feasible }

func (p *routePlanner) route(seq []int, savings time.Duration, optimized bool) domain.OptimizedRoute {
	w := p.walk(seq)
	return domain.OptimizedRoute{
		Stops:                  w.stops,
		TotalTravel:            w.travel,
		TotalDistanceMeters:    w.meters,
		SavingsVsChronological: max(savings, 0),
		IsOptimized:            optimized,
		Confidence:             w.confidence,
	}
}
