package poll

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitbeans/kaco/internal/fetch"
)

// Defaults for per-inverter tuning, matching the device's comfortable load:
// the realtime resource answers within a few seconds, the daily file is
// noticeably slower.
const (
	DefaultBaseInterval    = 20 * time.Second
	DefaultEnergyInterval  = 120 * time.Second
	DefaultRealtimeTimeout = 5 * time.Second
	DefaultDailyTimeout    = 10 * time.Second
	DefaultRetries         = 2
)

// Target is the immutable identity and tuning of one polled inverter.
//
// Address may be empty, meaning the inverter is not yet configured; the
// engine then skips all network I/O and keeps publishing its defaulted
// snapshot (an "inert" engine).
type Target struct {
	// Name identifies the inverter in results, logs and metrics.
	Name string

	// Address is the host or IP of the inverter's embedded web server.
	Address string

	// BaseInterval is the poll cadence while the device is healthy.
	BaseInterval time.Duration

	// EnergyInterval is the minimum time between daily-energy fetches.
	EnergyInterval time.Duration

	// RealtimeTimeout and DailyTimeout bound the two fetch paths.
	RealtimeTimeout time.Duration
	DailyTimeout    time.Duration

	// Retries is the number of extra realtime attempts within one cycle.
	Retries int
}

// Engine owns the mutable poll state for a single inverter and drives the
// per-cycle retry/backoff/merge protocol.
//
// An Engine is not safe for concurrent use: the scheduling layer guarantees
// at most one cycle in flight per inverter, so no internal locking is
// needed. Separate inverters get separate engines with no shared state.
type Engine struct {
	target  Target
	fetcher fetch.Fetcher
	log     *slog.Logger
	now     func() time.Time

	snapshot snapshotState
	failures int
	interval time.Duration
}

// snapshotState wraps the published snapshot so the swap point is explicit:
// a cycle either replaces current wholesale or leaves it untouched.
type snapshotState struct {
	current Snapshot
}

// NewEngine creates the poll state for one inverter. Zero tuning values are
// replaced with the package defaults; the initial snapshot is bootstrapped
// so the engine can publish a valid record before the first fetch.
func NewEngine(target Target, fetcher fetch.Fetcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if target.BaseInterval <= 0 {
		target.BaseInterval = DefaultBaseInterval
	}
	if target.EnergyInterval <= 0 {
		target.EnergyInterval = DefaultEnergyInterval
	}
	if target.RealtimeTimeout <= 0 {
		target.RealtimeTimeout = DefaultRealtimeTimeout
	}
	if target.DailyTimeout <= 0 {
		target.DailyTimeout = DefaultDailyTimeout
	}
	if target.Retries < 0 {
		target.Retries = 0
	}

	return &Engine{
		target:   target,
		fetcher:  fetcher,
		log:      logger.With("inverter", target.Name),
		now:      time.Now,
		snapshot: snapshotState{current: Bootstrap(Snapshot{})},
		failures: 0,
		interval: target.BaseInterval,
	}
}

// RunCycle executes one poll cycle and returns the snapshot to publish plus
// the interval the scheduler should wait before the next invocation.
//
// RunCycle never returns an error: every code path, including a panic inside
// parsing or scaling, yields a valid snapshot. Failures surface only through
// the growing interval and through log severity.
func (e *Engine) RunCycle(ctx context.Context) (snap Snapshot, next time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			e.log.Error("poll cycle panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			snap, next = e.recordFailure()
		}
	}()
	return e.cycle(ctx)
}

func (e *Engine) cycle(ctx context.Context) (Snapshot, time.Duration) {
	// Unconfigured inverter: no network I/O, no failure bookkeeping. The
	// defaulted snapshot keeps consumers alive until an address arrives.
	if strings.TrimSpace(e.target.Address) == "" {
		e.log.Warn("inverter address missing in config, polling skipped")
		return e.snapshot.current, e.interval
	}

	now := e.now()

	fields, ok := e.fetchRealtime(ctx)
	if !ok {
		return e.recordFailure()
	}

	updated, err := applyRealtime(e.snapshot.current, fields, now)
	if err != nil {
		// a record that splits into 14 fields but carries garbage registers
		// is as transient as a timeout
		e.log.Debug("realtime record rejected", "error", err)
		return e.recordFailure()
	}

	e.maybeRefreshEnergy(ctx, &updated, now)

	e.failures = 0
	e.interval = e.target.BaseInterval
	e.snapshot.current = updated
	return updated, e.interval
}

// fetchRealtime attempts the realtime resource up to 1+Retries times and
// returns the first record that splits into exactly 14 fields. Timeouts,
// non-2xx responses and field-count mismatches are silently discarded as
// long as attempts remain.
func (e *Engine) fetchRealtime(ctx context.Context) ([]string, bool) {
	url := "http://" + e.target.Address + "/realtime.csv"
	for attempt := 0; attempt <= e.target.Retries; attempt++ {
		resp := e.fetcher.Fetch(ctx, url, e.target.RealtimeTimeout)
		if resp.Error != nil {
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			continue
		}
		fields, err := fetch.ParseRealtime(resp.Text)
		if err != nil {
			continue
		}
		return fields, true
	}
	return nil, false
}

// maybeRefreshEnergy fetches the daily-energy resource if it has never been
// populated or the refresh interval has elapsed. Failures here are swallowed
// at debug level: a slow or flaky daily file must not punish the realtime
// cadence, so neither the failure counter nor the interval is touched.
func (e *Engine) maybeRefreshEnergy(ctx context.Context, snap *Snapshot, now time.Time) {
	if !snap.LastEnergyRefresh.IsZero() && now.Before(snap.LastEnergyRefresh.Add(e.target.EnergyInterval)) {
		return
	}

	url := "http://" + e.target.Address + "/" + now.Format("20060102") + ".csv"
	resp := e.fetcher.Fetch(ctx, url, e.target.DailyTimeout)
	if resp.Error != nil || resp.StatusCode != http.StatusOK {
		e.log.Debug("daily energy fetch failed", "status", resp.StatusCode, "error", resp.Error)
		return
	}

	rec, err := fetch.ParseDaily(resp.Text)
	if err != nil {
		e.log.Debug("daily energy record rejected", "error", err)
		return
	}

	snap.EnergyToday = rec.EnergyKWh
	snap.Serial = rec.Serial
	snap.Model = rec.Model
	snap.LastEnergyRefresh = now
}

// recordFailure performs the failure bookkeeping: counter up, interval
// backed off, snapshot left as the last-known value.
func (e *Engine) recordFailure() (Snapshot, time.Duration) {
	e.failures++
	if e.failures <= warnUntilFails {
		e.log.Warn("inverter unreachable", "consecutive_failures", e.failures)
	} else {
		e.log.Debug("inverter unreachable", "consecutive_failures", e.failures)
	}
	e.interval = applyBackoff(e.interval, e.failures)
	return e.snapshot.current, e.interval
}

// Failures returns the consecutive-failure count.
func (e *Engine) Failures() int {
	return e.failures
}

// CurrentInterval returns the interval the engine last asked to wait.
func (e *Engine) CurrentInterval() time.Duration {
	return e.interval
}

// CurrentSnapshot returns the last published snapshot.
func (e *Engine) CurrentSnapshot() Snapshot {
	return e.snapshot.current
}

// applyRealtime scales a validated 14-field realtime record into physical
// units on a copy of the previous snapshot. The 16-bit registers map
// linearly: voltages to 0–1600 V, currents to 0–200 A, both rounded to 3
// decimals; power to 0–100000 W rounded to the nearest watt. On any
// malformed register the previous snapshot is returned unchanged.
func applyRealtime(prev Snapshot, fields []string, now time.Time) (Snapshot, error) {
	var firstErr error
	reg := func(i int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("register %d: %w", i, err)
		}
		return v
	}

	next := prev
	next.GeneratorVoltage1 = scaleVoltage(reg(fetch.FieldGeneratorVoltage1))
	next.GeneratorVoltage2 = scaleVoltage(reg(fetch.FieldGeneratorVoltage2))
	next.GridVoltage1 = scaleVoltage(reg(fetch.FieldGridVoltage1))
	next.GridVoltage2 = scaleVoltage(reg(fetch.FieldGridVoltage2))
	next.GridVoltage3 = scaleVoltage(reg(fetch.FieldGridVoltage3))
	next.GeneratorCurrent1 = scaleCurrent(reg(fetch.FieldGeneratorCurrent1))
	next.GeneratorCurrent2 = scaleCurrent(reg(fetch.FieldGeneratorCurrent2))
	next.GridCurrent1 = scaleCurrent(reg(fetch.FieldGridCurrent1))
	next.GridCurrent2 = scaleCurrent(reg(fetch.FieldGridCurrent2))
	next.GridCurrent3 = scaleCurrent(reg(fetch.FieldGridCurrent3))
	next.Temperature = reg(fetch.FieldTemperature) / 100
	next.CurrentPower = scalePower(reg(fetch.FieldPower))

	code, err := strconv.Atoi(strings.TrimSpace(fields[fetch.FieldStatus]))
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("status register: %w", err)
	}
	if firstErr != nil {
		return prev, firstErr
	}

	next.StatusCode = code
	next.Status = fetch.StatusText(code)
	if next.CurrentPower > next.MaxPower {
		next.MaxPower = next.CurrentPower
	}
	next.LastUpdated = now
	return next, nil
}

// 16-bit register scaling: value = raw / (65535 / range).

func scaleVoltage(raw float64) float64 {
	return round3(raw / (65535.0 / 1600.0))
}

func scaleCurrent(raw float64) float64 {
	return round3(raw / (65535.0 / 200.0))
}

func scalePower(raw float64) int {
	return int(math.Round(raw / (65535.0 / 100000.0)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
