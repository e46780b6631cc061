package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/cache"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/distance"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/location"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/repositories"
	"github.com/kcirtapfromspace/offleash-sub001/internal/api"
	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/db"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/logging"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"github.com/kcirtapfromspace/offleash-sub001/internal/services"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	logLevel := flag.String("log-level", "", "override logging.level")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	conf, err := config.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *logLevel != "" {
		conf.Logging.Level = *logLevel
	}

	logger, err := logging.New(conf.Logging.Level, conf.Logging.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(conf, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(conf *config.Configuration, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engineCfg, err := config.NewEngineConfig(conf.Engine)
	if err != nil {
		return err
	}

	dialect, err := db.DialectFor(conf.Database.Driver)
	if err != nil {
		return err
	}
	conn, err := db.Open(conf.Database.Driver, conf.Database.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Schema creation is idempotent; local runs need no separate migration step.
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	chain, routing, feed, closeFeed, err := buildTravelChain(ctx, conf, engineCfg, conn, dialect, logger)
	if err != nil {
		return err
	}
	defer closeFeed()

	repo := repositories.NewSQLScheduleRepository(conn, dialect)
	router := api.NewRouter(api.Dependencies{
		Engine:       services.NewAvailabilityEngine(repo, chain, logger.Named("availability")),
		EngineConfig: engineCfg,
		Optimizer:    services.NewRouteOptimizer(chain, conf.Provider.MatrixConcurrency, logger.Named("optimizer")),
		Bookings:     repo,
		Positions:    feed,
		Logger:       logger.Named("http"),
	})

	// Timeouts are tuned for cold-cache route optimization (external API latency).
	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("db_driver", conf.Database.Driver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}

	// Let pending cache write-through finish before the database closes.
	if routing != nil {
		routing.Flush()
	}
	return nil
}

// buildTravelChain assembles the fallback tiers in priority order: cache,
// live position, routing API, great-circle. Redis and ORS are optional.
func buildTravelChain(
	ctx context.Context,
	conf *config.Configuration,
	engineCfg config.EngineConfig,
	conn *sql.DB,
	dialect db.Dialect,
	logger *zap.Logger,
) (*services.TravelTimeChain, *distance.RoutingAPISource, ports.PositionFeed, func(), error) {
	p := conf.Provider

	travelCache := cache.NewLayeredTravelCache(
		cache.NewMemoryTravelCache(p.MemoryCacheSize, p.CacheMaxAge),
		cache.NewSQLTravelCache(conn, dialect),
		logger.Named("travel_cache"),
	)
	estimator := distance.GreatCircleEstimator{
		AverageSpeedKPH: p.AverageSpeedKPH,
		RoadFactor:      p.RoadFactor,
		MediumMaxMeters: p.MediumConfidenceMaxKM * 1000,
	}

	sources := []ports.TravelSource{cache.NewCacheSource(travelCache, p.CacheMaxAge)}

	var (
		feed      ports.PositionFeed
		closeFeed = func() {}
	)
	if conf.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, nil, nil, fmt.Errorf("redis ping %q: %w", conf.Redis.Addr, err)
		}
		closeFeed = func() { client.Close() }

		redisFeed := location.NewRedisPositionFeed(client, p.LiveFixMaxAge)
		feed = redisFeed
		sources = append(sources, location.NewLiveSource(redisFeed, p.LiveFixMaxAge, estimator))
	} else {
		logger.Info("live position feed disabled (redis.addr empty)")
	}

	var routing *distance.RoutingAPISource
	if conf.Routing.APIKey != "" {
		client, err := distance.NewORSClient(conf.Routing.APIKey, conf.Routing.BaseURL, conf.Routing.Profile, conf.Routing.Timeout, logger.Named("ors"))
		if err != nil {
			closeFeed()
			return nil, nil, nil, nil, err
		}
		routing = distance.NewRoutingAPISource(client, travelCache, p.WriteTimeout, logger.Named("routing"))
		sources = append(sources, routing)
	} else {
		logger.Info("routing api disabled (routing.api_key empty)")
	}

	sources = append(sources, distance.NewGreatCircleSource(estimator))

	chain := services.NewTravelTimeChain(sources, p.LookupTimeout, engineCfg.DefaultTravel(), logger.Named("travel"))
	return chain, routing, feed, closeFeed, nil
}
