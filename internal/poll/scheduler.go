package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bitbeans/kaco/internal/fetch"
)

// Result is one completed poll cycle, emitted to the scheduler's results
// channel for the consumer to store and publish.
type Result struct {
	// Name and Address identify the inverter.
	Name    string
	Address string

	// Snapshot is the (always valid) measurement record after the cycle.
	Snapshot Snapshot

	// Failures is the consecutive-failure count after the cycle.
	Failures int

	// NextInterval is how long the engine asked to wait before the next
	// cycle. It grows under sustained failure and resets on success.
	NextInterval time.Duration

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time
}

// Scheduler drives one polling goroutine per inverter.
//
// Each goroutine owns its [Engine] exclusively and re-arms a single timer
// with whatever interval the engine returns, so a backed-off inverter slows
// only itself. Cycles for one inverter are fully serialized; inverters are
// independent. Results are emitted to a channel consumed by the caller.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	targets []Target
	fetcher fetch.Fetcher
	results chan Result
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewScheduler creates a polling [Scheduler] for the given inverters.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop]. Results are available via [Scheduler.Results].
func NewScheduler(targets []Target, fetcher fetch.Fetcher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		targets: targets,
		fetcher: fetcher,
		results: make(chan Result, len(targets)+1),
		logger:  logger,
	}
}

// Results returns a receive-only channel that emits one [Result] per
// completed poll cycle. The channel is closed when the scheduler stops;
// consumers should read until it is closed.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start launches one polling goroutine per inverter.
//
// Start is non-blocking and returns immediately. Every inverter is polled
// once right away, then re-polled after whatever interval its engine
// returned. Polling continues until [Scheduler.Stop] is called or the
// context is cancelled.
//
// If ctx is nil, context.Background() is used. Start is idempotent;
// subsequent calls after the first are no-ops, as is Start after Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	pollCtx := s.ctx // capture under lock to avoid race

	s.wg.Add(len(s.targets))
	s.mu.Unlock()

	for _, target := range s.targets {
		go s.runTarget(pollCtx, target)
	}

	go func() {
		s.wg.Wait()
		s.closeOnce.Do(func() { close(s.results) })
	}()
}

// runTarget is the per-inverter loop: run a cycle, emit the result, sleep
// for the interval the engine returned, repeat. An in-flight fetch is
// abandoned via context cancellation; the engine's state swap is atomic, so
// teardown can never expose a half-updated snapshot.
func (s *Scheduler) runTarget(ctx context.Context, target Target) {
	defer s.wg.Done()

	engine := NewEngine(target, s.fetcher, s.logger)

	timer := time.NewTimer(0) // first cycle fires immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			snapshot, next := engine.RunCycle(ctx)
			result := Result{
				Name:         target.Name,
				Address:      target.Address,
				Snapshot:     snapshot,
				Failures:     engine.Failures(),
				NextInterval: next,
				CheckedAt:    time.Now(),
			}

			select {
			case s.results <- result:
			case <-ctx.Done():
				return
			}

			timer.Reset(next)
		}
	}
}

// Stop halts all polling goroutines and waits for them to complete.
//
// Stop cancels the scheduler's context and blocks until every in-flight
// cycle has finished and the results channel is closed. Stop is idempotent
// and safe to call multiple times; calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}
