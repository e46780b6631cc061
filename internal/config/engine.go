package config

import (
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// EngineOptions are the named inputs for an EngineConfig.
type EngineOptions struct {
	MinBufferMinutes     int `mapstructure:"min_buffer_minutes"`
	DefaultTravelMinutes int `mapstructure:"default_travel_minutes"`
	SlotIntervalMinutes  int `mapstructure:"slot_interval_minutes"`
	MaxAdvanceDays       int `mapstructure:"max_advance_days"`
	MinNoticeHours       int `mapstructure:"min_notice_hours"`
}

// DefaultEngineOptions returns the options used when nothing is configured.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		MinBufferMinutes:     15,
		DefaultTravelMinutes: 20,
		SlotIntervalMinutes:  30,
		MaxAdvanceDays:       60,
		MinNoticeHours:       2,
	}
}

// EngineConfig holds the availability engine settings. It has no setters;
// build a new value with NewEngineConfig to change anything.
type EngineConfig struct {
	minBuffer      time.Duration
	defaultTravel  time.Duration
	slotInterval   time.Duration
	maxAdvanceDays int
	minNotice      time.Duration
}

func NewEngineConfig(o EngineOptions) (EngineConfig, error) {
	if o.SlotIntervalMinutes <= 0 {
		return EngineConfig{}, fmt.Errorf("engine config: %w: slot_interval_minutes must be positive", domain.ErrInvalidInput)
	}
	if o.MinBufferMinutes < 0 || o.DefaultTravelMinutes < 0 || o.MaxAdvanceDays < 0 || o.MinNoticeHours < 0 {
		return EngineConfig{}, fmt.Errorf("engine config: %w: options must not be negative", domain.ErrInvalidInput)
	}

	return EngineConfig{
		minBuffer:      time.Duration(o.MinBufferMinutes) * time.Minute,
		defaultTravel:  time.Duration(o.DefaultTravelMinutes) * time.Minute,
		slotInterval:   time.Duration(o.SlotIntervalMinutes) * time.Minute,
		maxAdvanceDays: o.MaxAdvanceDays,
		minNotice:      time.Duration(o.MinNoticeHours) * time.Hour,
	}, nil
}

func (c EngineConfig) MinBuffer() time.Duration     { return c.minBuffer }
func (c EngineConfig) DefaultTravel() time.Duration { return c.defaultTravel }
func (c EngineConfig) SlotInterval() time.Duration  { return c.slotInterval }
func (c EngineConfig) MaxAdvanceDays() int          { return c.maxAdvanceDays }
func (c EngineConfig) MinNotice() time.Duration     { return c.minNotice }
