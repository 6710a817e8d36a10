package kaco

import (
	"errors"
	"time"
)

// inverterConfig holds mutable state during inverter construction.
type inverterConfig struct {
	interval        time.Duration
	energyInterval  time.Duration
	realtimeTimeout time.Duration
	dailyTimeout    time.Duration
	retries         int
}

// InverterOption is a function that configures an [Inverter] during
// construction.
//
// InverterOption implements the functional options pattern, allowing
// optional configuration to be passed to [NewInverter] in a type-safe,
// extensible way. Options return an error if validation fails.
type InverterOption func(*inverterConfig) error

// WithInterval sets the base poll interval for this inverter.
//
// This is the cadence used while the device answers; under sustained
// failure the engine backs the effective interval off exponentially (capped
// at 2 minutes) and restores this value on the next success.
//
// The interval must be at least 1 second and at most 1 hour.
// Defaults to 20 seconds.
func WithInterval(d time.Duration) InverterOption {
	return func(cfg *inverterConfig) error {
		if d < time.Second {
			return errors.New("interval must be at least 1 second")
		}
		if d > time.Hour {
			return errors.New("interval must not exceed 1 hour")
		}
		cfg.interval = d
		return nil
	}
}

// WithEnergyInterval sets the minimum time between daily-energy fetches.
//
// The daily file is slow to serve and changes rarely, so it is re-read at
// most once per this interval regardless of how often the realtime poll
// runs. Defaults to 120 seconds.
//
// Returns an error if the duration is less than 1 second.
func WithEnergyInterval(d time.Duration) InverterOption {
	return func(cfg *inverterConfig) error {
		if d < time.Second {
			return errors.New("energy interval must be at least 1 second")
		}
		cfg.energyInterval = d
		return nil
	}
}

// WithRealtimeTimeout bounds one realtime.csv fetch. Defaults to 5 seconds.
func WithRealtimeTimeout(d time.Duration) InverterOption {
	return func(cfg *inverterConfig) error {
		if d <= 0 {
			return errors.New("realtime timeout must be positive")
		}
		cfg.realtimeTimeout = d
		return nil
	}
}

// WithDailyTimeout bounds one daily-energy fetch. The daily file is served
// from slow flash and deserves a laxer bound than the realtime resource.
// Defaults to 10 seconds.
func WithDailyTimeout(d time.Duration) InverterOption {
	return func(cfg *inverterConfig) error {
		if d <= 0 {
			return errors.New("daily timeout must be positive")
		}
		cfg.dailyTimeout = d
		return nil
	}
}

// WithRetries sets how many extra realtime attempts a single poll cycle may
// make after the first one fails. Defaults to 2.
//
// Returns an error if the count is negative or implausibly large.
func WithRetries(n int) InverterOption {
	return func(cfg *inverterConfig) error {
		if n < 0 {
			return errors.New("retries cannot be negative")
		}
		if n > 10 {
			return errors.New("retries must not exceed 10")
		}
		cfg.retries = n
		return nil
	}
}
