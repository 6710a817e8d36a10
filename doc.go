// Package kaco provides an embeddable monitor for KACO Powador solar
// inverters polled over their embedded HTTP interface.
//
// kaco is designed as an SDK-first library, allowing developers to
// programmatically configure and run inverter monitoring as part of their
// applications. It follows functional programming principles with immutable
// types and composable configuration via the functional options pattern.
//
// # Quick Start
//
// Create inverters and start the monitor with graceful shutdown:
//
//	inv, _ := kaco.NewInverter("roof", "192.168.1.40")
//	m, _ := kaco.New(kaco.WithInverter(inv))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// The monitor uses the functional options pattern for configuration:
//
//	m, err := kaco.New(
//	    kaco.WithInverter(roof),
//	    kaco.WithInverter(garage),
//	    kaco.WithPort(9090),
//	    kaco.WithSnapshotCallback(func(r kaco.PollResult) {
//	        log.Printf("%s: %d W", r.Name, r.Snapshot.CurrentPower)
//	    }),
//	)
//
// Inverters can also be configured with options:
//
//	inv, err := kaco.NewInverter("roof", "192.168.1.40",
//	    kaco.WithInterval(30 * time.Second),
//	    kaco.WithEnergyInterval(5 * time.Minute),
//	    kaco.WithRealtimeTimeout(5 * time.Second),
//	    kaco.WithRetries(3),
//	)
//
// # Polling Model
//
// Each inverter runs on its own adaptive timer. While the device answers,
// it is polled at its base interval; under sustained failure the interval
// backs off exponentially with jitter, capped at two minutes, and snaps
// back on the next success. Snapshots are sticky: a failed cycle republishes
// the previous values rather than nulling them, so consumers always see a
// complete record. The slow daily-energy file (today's production, serial,
// model) is re-read at most once per energy interval, independently of the
// realtime cadence.
//
// # Architecture
//
// The module consists of several internal packages (under internal/):
//
//   - internal/fetch: HTTP client and CSV parsing for the inverter's
//     realtime and daily files
//   - internal/poll: per-inverter poll engine with backoff and the
//     scheduler driving all engines
//   - internal/store: in-memory snapshot storage with pub/sub for
//     real-time updates
//   - internal/server: HTTP server with REST API, Server-Sent Events and
//     Prometheus metrics
//   - internal/history: SQLite-backed daily production archive and the
//     historical CSV importer
//
// The internal packages are not part of the public API and may change
// without notice.
package kaco
