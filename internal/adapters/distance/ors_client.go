package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/obs"
	"go.uber.org/zap"
)

// RouteLeg is the driving distance and duration between two points.
type RouteLeg struct {
	DistanceMeters  int
	DurationSeconds int
}

// RouteClient returns driving time between two coordinates.
type RouteClient interface {
	Route(ctx context.Context, from, to domain.Coordinates) (RouteLeg, error)
}

// ORSClient implements RouteClient using the OpenRouteService matrix API.
//
// Transient failures (network errors, 429, 5xx) are retried with backoff
// until the caller's context expires. The client is safe for concurrent use.
type ORSClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	logger  *zap.Logger
}

func NewORSClient(
	apiKey string,
	baseURL string,
	profile string,
	timeout time.Duration,
	logger *zap.Logger,
) (*ORSClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	if profile == "" {
		profile = "driving-car"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ORSClient{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		logger:  logger,
	}, nil
}

// Route fetches a single origin->destination leg.
func (o *ORSClient) Route(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (_ RouteLeg, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	legs, err := o.fetchMatrixRow(ctx, from, []domain.Coordinates{to})
	if err != nil {
		return RouteLeg{}, fmt.Errorf("ORS route: %w", err)
	}

	return legs[0], nil
}
