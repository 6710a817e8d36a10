package kaco

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bitbeans/kaco/internal/fetch"
	"github.com/bitbeans/kaco/internal/metrics"
	"github.com/bitbeans/kaco/internal/poll"
	"github.com/bitbeans/kaco/internal/server"
	"github.com/bitbeans/kaco/internal/store"
)

const defaultPort = 8080

// Monitor is the main orchestrator for inverter polling and the HTTP
// surface over the snapshots.
//
// Monitor coordinates one poll engine per configured inverter, stores their
// always-valid snapshots, and serves them as JSON, SSE and Prometheus
// metrics. It is created using [New] with functional options and started
// with [Monitor.Start].
//
// The typical lifecycle is:
//
//	inv, _ := kaco.NewInverter("roof", "192.168.1.40")
//	m, err := kaco.New(kaco.WithInverter(inv))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
type Monitor struct {
	inverters         []Inverter
	port              int
	logger            *slog.Logger
	snapshotCallbacks []func(PollResult)
}

// New creates a new [Monitor] instance with the given options.
//
// At least one inverter must be configured via [WithInverter] or
// [WithInverters]; inverter names must be unique because they key the
// snapshot store. The HTTP port defaults to 8080.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		inverters: []Inverter{},
		port:      defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.inverters) == 0 {
		return nil, errors.New("at least one inverter is required")
	}

	seen := make(map[string]bool, len(cfg.inverters))
	for _, inv := range cfg.inverters {
		if seen[inv.name] {
			return nil, fmt.Errorf("duplicate inverter name: %q", inv.name)
		}
		seen[inv.name] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		inverters:         cfg.inverters,
		port:              cfg.port,
		logger:            logger,
		snapshotCallbacks: cfg.snapshotCallbacks,
	}, nil
}

// Start begins polling inverters and serving the HTTP API.
//
// Start is a blocking call that runs until the provided context is
// cancelled. During execution:
//
//   - Every inverter is polled immediately, then re-polled after whatever
//     interval its engine returns (base cadence when healthy, backed off
//     under failure)
//   - The HTTP server starts on the configured port
//   - Snapshots are available at /api/snapshots, /api/sse and /metrics
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("kaco monitor starting", "inverter_count", len(m.inverters))
	m.logger.Info("api available", "url", fmt.Sprintf("http://localhost:%d", m.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	snapshotStore := store.NewMemoryStore()

	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(metrics.NewCollector(snapshotStore))

	client := fetch.NewClient()
	defer client.Close()

	scheduler := poll.NewScheduler(m.toTargets(), client, m.logger)
	scheduler.Start(ctx)

	// the consumer drains poll results into the store and callbacks; it
	// exits when the scheduler closes its results channel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for result := range scheduler.Results() {
			// store update first (callbacks fire after data is persisted)
			snapshotStore.Update(storeSnapshot(result))

			if len(m.snapshotCallbacks) > 0 {
				pr := publicResult(result)
				for _, cb := range m.snapshotCallbacks {
					invokeCallbackSafe(cb, pr, m.logger)
				}
			}

			logAttrs := []any{
				"inverter", result.Name,
				"power_w", result.Snapshot.CurrentPower,
				"next_interval", result.NextInterval.String(),
			}
			if result.Failures > 0 {
				m.logger.Debug("poll cycle failed, snapshot stale", append(logAttrs, "consecutive_failures", result.Failures)...)
			} else {
				m.logger.Debug("poll cycle completed", logAttrs...)
			}
		}
		return nil
	})

	httpServer := server.NewServer(snapshotStore, m.port, registry, m.logger)
	if err := httpServer.Start(gctx); err != nil {
		scheduler.Stop()
		_ = g.Wait()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-gctx.Done()
	scheduler.Stop() // closes the results channel, ending the consumer
	_ = g.Wait()
	m.logger.Info("kaco monitor stopped")
	return nil
}

// Inverters returns a copy of the configured inverters.
func (m *Monitor) Inverters() []Inverter {
	cp := make([]Inverter, len(m.inverters))
	copy(cp, m.inverters)
	return cp
}

// Port returns the configured HTTP port.
func (m *Monitor) Port() int {
	return m.port
}

// toTargets converts the configured inverters to poll targets.
func (m *Monitor) toTargets() []poll.Target {
	targets := make([]poll.Target, len(m.inverters))
	for i, inv := range m.inverters {
		targets[i] = poll.Target{
			Name:            inv.name,
			Address:         inv.address,
			BaseInterval:    inv.interval,
			EnergyInterval:  inv.energyInterval,
			RealtimeTimeout: inv.realtimeTimeout,
			DailyTimeout:    inv.dailyTimeout,
			Retries:         inv.retries,
		}
	}
	return targets
}

// storeSnapshot converts a poll result to its storage representation.
func storeSnapshot(r poll.Result) store.Snapshot {
	s := r.Snapshot
	return store.Snapshot{
		Name:                r.Name,
		Address:             r.Address,
		GeneratorVoltage1:   s.GeneratorVoltage1,
		GeneratorVoltage2:   s.GeneratorVoltage2,
		GridVoltage1:        s.GridVoltage1,
		GridVoltage2:        s.GridVoltage2,
		GridVoltage3:        s.GridVoltage3,
		GeneratorCurrent1:   s.GeneratorCurrent1,
		GeneratorCurrent2:   s.GeneratorCurrent2,
		GridCurrent1:        s.GridCurrent1,
		GridCurrent2:        s.GridCurrent2,
		GridCurrent3:        s.GridCurrent3,
		CurrentPower:        s.CurrentPower,
		EnergyToday:         s.EnergyToday,
		MaxPower:            s.MaxPower,
		Serial:              s.Serial,
		Model:               s.Model,
		StatusCode:          s.StatusCode,
		Status:              s.Status,
		Temperature:         s.Temperature,
		ConsecutiveFailures: r.Failures,
		NextIntervalSeconds: r.NextInterval.Seconds(),
		LastUpdated:         s.LastUpdated,
		LastEnergyRefresh:   s.LastEnergyRefresh,
		CheckedAt:           r.CheckedAt,
	}
}

// publicResult converts a poll result to the public callback type.
func publicResult(r poll.Result) PollResult {
	return PollResult{
		Name:                r.Name,
		Address:             r.Address,
		Snapshot:            publicSnapshot(r.Snapshot),
		ConsecutiveFailures: r.Failures,
		NextInterval:        r.NextInterval,
		CheckedAt:           r.CheckedAt,
	}
}

// invokeCallbackSafe calls a snapshot callback with panic recovery so a
// misbehaving callback cannot take down the result consumer.
func invokeCallbackSafe(cb func(PollResult), result PollResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("snapshot callback panic",
				"inverter", result.Name,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	cb(result)
}
