package model

import (
	"fmt"
	"time"
)

// AppConfig holds user defaults loaded from ~/.floorplan/config.json.
type AppConfig struct {
	// Default optimizer settings applied to every run
	DefaultPlacer             PlacerKind `json:"default_placer"`
	DefaultInitialTemperature float64    `json:"default_initial_temperature"`
	DefaultCoolingRate        float64    `json:"default_cooling_rate"`
	DefaultStopTemperature    float64    `json:"default_stop_temperature"`
	DefaultMaxIterations      int        `json:"default_max_iterations"`
	DefaultTimeLimitSeconds   int        `json:"default_time_limit_seconds"`

	// Output preferences
	ResultsPath string   `json:"results_path"`
	RecentRuns  []string `json:"recent_runs"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPlacer:             defaults.Placer,
		DefaultInitialTemperature: defaults.InitialTemperature,
		DefaultCoolingRate:        defaults.CoolingRate,
		DefaultStopTemperature:    defaults.StopTemperature,
		DefaultMaxIterations:      defaults.MaxIterations,
		DefaultTimeLimitSeconds:   int(defaults.TimeLimit / time.Second),
		ResultsPath:               "results.txt",
		RecentRuns:                []string{},
	}
}

// ApplyToSettings copies the configured defaults into s. Zero values in the
// config leave the corresponding setting untouched.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if c.DefaultPlacer != "" {
		s.Placer = c.DefaultPlacer
	}
	if c.DefaultInitialTemperature > 0 {
		s.InitialTemperature = c.DefaultInitialTemperature
	}
	if c.DefaultCoolingRate > 0 {
		s.CoolingRate = c.DefaultCoolingRate
	}
	if c.DefaultStopTemperature > 0 {
		s.StopTemperature = c.DefaultStopTemperature
	}
	if c.DefaultMaxIterations > 0 {
		s.MaxIterations = c.DefaultMaxIterations
	}
	if c.DefaultTimeLimitSeconds > 0 {
		s.TimeLimit = time.Duration(c.DefaultTimeLimitSeconds) * time.Second
	}
}

// Validate rejects defaults that would not produce runnable settings once
// applied. Zero values mean "not configured" and are accepted.
func (c AppConfig) Validate() error {
	if c.DefaultInitialTemperature < 0 || c.DefaultStopTemperature < 0 {
		return fmt.Errorf("%w: default temperatures must not be negative", ErrInvalidConfig)
	}
	if c.DefaultCoolingRate < 0 {
		return fmt.Errorf("%w: default cooling rate %.4f must not be negative", ErrInvalidConfig, c.DefaultCoolingRate)
	}
	if c.DefaultMaxIterations < 0 || c.DefaultTimeLimitSeconds < 0 {
		return fmt.Errorf("%w: default limits must not be negative", ErrInvalidConfig)
	}
	s := DefaultSettings()
	c.ApplyToSettings(&s)
	return s.Validate()
}

// AddRecentRun records path at the front of RecentRuns, keeping at most
// limit entries and no duplicates.
func (c *AppConfig) AddRecentRun(path string, limit int) {
	runs := []string{path}
	for _, r := range c.RecentRuns {
		if r != path {
			runs = append(runs, r)
		}
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	c.RecentRuns = runs
}
