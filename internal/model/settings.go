package model

import (
	"fmt"
	"time"
)

// PlacerKind names an initial placement strategy.
type PlacerKind string

const (
	PlacerGrid       PlacerKind = "grid"       // Row-major first-fit scan (exhaustive)
	PlacerGuillotine PlacerKind = "guillotine" // Free-rectangle best-area-fit (fast)
)

// Settings holds placement and annealing parameters.
type Settings struct {
	Placer PlacerKind `json:"placer"`

	// Cooling schedule
	InitialTemperature float64 `json:"initial_temperature"`
	CoolingRate        float64 `json:"cooling_rate"` // Fraction removed on each accepted move
	StopTemperature    float64 `json:"stop_temperature"`
	SwapProbability    float64 `json:"swap_probability"` // Otherwise relocate

	// Hard stops independent of the cooling schedule
	MaxIterations int           `json:"max_iterations"`
	TimeLimit     time.Duration `json:"time_limit"` // 0 disables

	Seed       int64 `json:"seed"`        // 0 = seed from the clock
	TraceEvery int   `json:"trace_every"` // Iterations between convergence samples
}

func DefaultSettings() Settings {
	return Settings{
		Placer:             PlacerGrid,
		InitialTemperature: 10000,
		CoolingRate:        0.003,
		StopTemperature:    4.5,
		SwapProbability:    0.5,
		MaxIterations:      200000,
		TimeLimit:          2 * time.Minute,
		Seed:               0,
		TraceEvery:         25,
	}
}

// Validate rejects settings the optimizer cannot run with.
func (s Settings) Validate() error {
	switch s.Placer {
	case PlacerGrid, PlacerGuillotine:
	default:
		return fmt.Errorf("%w: unknown placer %q", ErrInvalidConfig, s.Placer)
	}
	if s.InitialTemperature <= 0 || s.StopTemperature <= 0 {
		return fmt.Errorf("%w: temperatures must be positive", ErrInvalidConfig)
	}
	if s.CoolingRate <= 0 || s.CoolingRate >= 1 {
		return fmt.Errorf("%w: cooling rate %.4f must be in (0, 1)", ErrInvalidConfig, s.CoolingRate)
	}
	if s.SwapProbability < 0 || s.SwapProbability > 1 {
		return fmt.Errorf("%w: swap probability %.2f must be in [0, 1]", ErrInvalidConfig, s.SwapProbability)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", ErrInvalidConfig)
	}
	if s.TimeLimit < 0 {
		return fmt.Errorf("%w: time limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
