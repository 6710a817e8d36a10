package kaco

import (
	"errors"
	"log/slog"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	inverters         []Inverter
	port              int
	logger            *slog.Logger
	snapshotCallbacks []func(PollResult)
}

// Option is a function that configures a [Monitor] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithInverter], [WithInverters], [WithPort],
// [WithLogger], [WithSnapshotCallback].
type Option func(*monitorConfig) error

// WithInverter adds a single [Inverter] to the monitored set.
//
// Can be called multiple times. At least one inverter must be configured
// for [New] to succeed.
func WithInverter(inv Inverter) Option {
	return func(cfg *monitorConfig) error {
		cfg.inverters = append(cfg.inverters, inv)
		return nil
	}
}

// WithInverters adds multiple [Inverter] values to the monitored set.
// Equivalent to calling [WithInverter] multiple times.
func WithInverters(inverters ...Inverter) Option {
	return func(cfg *monitorConfig) error {
		cfg.inverters = append(cfg.inverters, inverters...)
		return nil
	}
}

// WithPort sets the HTTP port for the API and metrics server.
//
// The JSON API, SSE stream and Prometheus metrics are served at
// http://localhost:<port>. Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSnapshotCallback registers a function to be called after every poll
// cycle, successful or not.
//
// The callback receives a [PollResult] with the inverter identity, the
// published snapshot, the failure streak and the next poll interval.
//
// Multiple callbacks may be registered by calling WithSnapshotCallback
// multiple times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine; blocking callbacks delay
// subsequent poll result processing.
//
// Callbacks are invoked synchronously from a single goroutine. Panics
// within callbacks are recovered and logged; they do not crash the
// scheduler.
//
// Nil callbacks are silently ignored.
func WithSnapshotCallback(cb func(PollResult)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.snapshotCallbacks = append(cfg.snapshotCallbacks, cb)
		return nil
	}
}
