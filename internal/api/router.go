package api

import (
	"net/http"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/api/handlers"
	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP layer needs. Positions may be
// nil when no live feed is configured.
type Dependencies struct {
	Engine       handlers.SlotFinder
	EngineConfig config.EngineConfig
	Optimizer    handlers.RouteOptimizer
	Bookings     ports.RouteBookingRepository
	Positions    ports.PositionFeed
	Now          func() time.Time
	Logger       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	availability := &handlers.AvailabilityHandler{
		Engine: deps.Engine,
		Config: deps.EngineConfig,
		Now:    now,
		Logger: logger,
	}
	routes := &handlers.RouteHandler{
		Bookings:  deps.Bookings,
		Optimizer: deps.Optimizer,
		Logger:    logger,
	}
	positions := &handlers.PositionHandler{
		Feed:   deps.Positions,
		Now:    now,
		Logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/availability", availability.Find)
	mux.HandleFunc("/routes/optimize", routes.Optimize)
	mux.HandleFunc("/walkers/position", positions.Record)

	return requestIDMiddleware(loggingMiddleware(logger, mux))
}
