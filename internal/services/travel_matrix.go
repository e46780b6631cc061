package services

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"golang.org/x/sync/errgroup"
)

// travelMatrix holds symmetric pairwise estimates between route stops,
// indexed by stop position.
type travelMatrix struct {
	est [][]domain.TravelTimeEstimate
}

func (m travelMatrix) at(i, j int) domain.TravelTimeEstimate { return m.est[i][j] }

// seconds is the whole-second cost used for scoring.
func (m travelMatrix) seconds(i, j int) int64 {
	return int64(m.est[i][j].Duration.Round(time.Second) / time.Second)
}

// buildTravelMatrix fills the upper triangle of the matrix with at most
// limit concurrent provider calls and mirrors it. Every cell is written by
// exactly one goroutine, so aggregation order does not depend on scheduling.
func buildTravelMatrix(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	stops []domain.RouteBooking,
	limit int,
) (travelMatrix, error) {
	n := len(stops)
	m := travelMatrix{est: make([][]domain.TravelTimeEstimate, n)}
	for i := range m.est {
		m.est[i] = make([]domain.TravelTimeEstimate, n)
		m.est[i][i] = domain.TravelTimeEstimate{Confidence: domain.ConfidenceHigh}
	}

	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if stops[i].LocationID != "" && stops[i].LocationID == stops[j].LocationID {
				same := domain.TravelTimeEstimate{Confidence: domain.ConfidenceHigh}
				m.est[i][j], m.est[j][i] = same, same
				continue
			}
			if gctx.Err() != nil {
				break
			}

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				est := provider.Estimate(gctx, domain.TravelQuery{
					Origin:      stops[i].Location(),
					Destination: stops[j].Location(),
					AsOf:        stops[i].ScheduledStart,
				})
				m.est[i][j], m.est[j][i] = est, est
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return travelMatrix{}, err
	}
	// Cells filled after cancellation hold defaults; the matrix is unusable.
	if err := ctx.Err(); err != nil {
		return travelMatrix{}, err
	}
	return m, nil
}
