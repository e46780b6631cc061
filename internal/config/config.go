// Package config loads service configuration from an optional YAML file and
// OFFLEASH_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for the scheduling service.
type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Provider ProviderConfig `mapstructure:"provider"`
	Engine   EngineOptions  `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig selects the SQL driver: "pgx" for Postgres or "sqlite".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// RedisConfig points at the live position feed. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RoutingConfig configures the OpenRouteService client. An empty APIKey
// disables the routing tier.
type RoutingConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Profile string        `mapstructure:"profile"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProviderConfig tunes the travel-time fallback chain.
type ProviderConfig struct {
	CacheMaxAge           time.Duration `mapstructure:"cache_max_age"`
	LiveFixMaxAge         time.Duration `mapstructure:"live_fix_max_age"`
	LookupTimeout         time.Duration `mapstructure:"lookup_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	AverageSpeedKPH       float64       `mapstructure:"average_speed_kph"`
	RoadFactor            float64       `mapstructure:"road_factor"`
	MediumConfidenceMaxKM float64       `mapstructure:"medium_confidence_max_km"`
	MemoryCacheSize       int           `mapstructure:"memory_cache_size"`
	MatrixConcurrency     int           `mapstructure:"matrix_concurrency"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "data/app.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.base_url", "https://api.openrouteservice.org")
	v.SetDefault("routing.profile", "driving-car")
	v.SetDefault("routing.timeout", 10*time.Second)
	v.SetDefault("provider.cache_max_age", 45*time.Minute)
	v.SetDefault("provider.live_fix_max_age", 10*time.Minute)
	v.SetDefault("provider.lookup_timeout", 2*time.Second)
	v.SetDefault("provider.write_timeout", 3*time.Second)
	v.SetDefault("provider.average_speed_kph", 30.0)
	v.SetDefault("provider.road_factor", 1.3)
	v.SetDefault("provider.medium_confidence_max_km", 15.0)
	v.SetDefault("provider.memory_cache_size", 10_000)
	v.SetDefault("provider.matrix_concurrency", 5)

	e := DefaultEngineOptions()
	v.SetDefault("engine.min_buffer_minutes", e.MinBufferMinutes)
	v.SetDefault("engine.default_travel_minutes", e.DefaultTravelMinutes)
	v.SetDefault("engine.slot_interval_minutes", e.SlotIntervalMinutes)
	v.SetDefault("engine.max_advance_days", e.MaxAdvanceDays)
	v.SetDefault("engine.min_notice_hours", e.MinNoticeHours)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// LoadConfiguration reads the YAML file at configPath (optional) and overlays
// OFFLEASH_* environment variables, e.g. OFFLEASH_DATABASE_URL.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OFFLEASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load configuration: read %q: %w", configPath, err)
		}
	}

	var conf Configuration
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("load configuration: decode: %w", err)
	}

	if conf.Provider.MatrixConcurrency < 1 {
		return nil, fmt.Errorf("load configuration: provider.matrix_concurrency must be at least 1")
	}
	if conf.Provider.AverageSpeedKPH <= 0 {
		return nil, fmt.Errorf("load configuration: provider.average_speed_kph must be positive")
	}

	return &conf, nil
}
