package poll

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitbeans/kaco/internal/fetch"
)

func schedulerFetcher() *mockFetcher {
	return &mockFetcher{handler: func(url string) fetch.Response {
		if strings.HasSuffix(url, "/realtime.csv") {
			return fetch.Response{Text: realtimeBody("100"), StatusCode: http.StatusOK}
		}
		return fetch.Response{Text: dailyBody, StatusCode: http.StatusOK}
	}}
}

// TestScheduler_StopBeforeStart verifies that calling Stop() on a scheduler
// that was never started does not panic and is a safe no-op.
func TestScheduler_StopBeforeStart(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())

	// this must not panic
	scheduler.Stop()
}

// TestScheduler_StopTwice verifies that Stop() is idempotent and can be
// called multiple times without panic or deadlock.
func TestScheduler_StopTwice(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())
	scheduler.Start(context.Background())

	// both calls must complete without panic or deadlock
	scheduler.Stop()
	scheduler.Stop()
}

// TestScheduler_EmitsImmediateResult verifies that every inverter is polled
// once right away: a result must arrive well before the base interval.
func TestScheduler_EmitsImmediateResult(t *testing.T) {
	targets := []Target{{
		Name:         "test",
		Address:      "192.168.1.40",
		BaseInterval: time.Minute,
	}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	select {
	case result := <-scheduler.Results():
		if result.Name != "test" {
			t.Errorf("result.Name = %q, want %q", result.Name, "test")
		}
		if result.Failures != 0 {
			t.Errorf("result.Failures = %d, want 0", result.Failures)
		}
		if result.Snapshot.Serial != "123456789" {
			t.Errorf("result.Snapshot.Serial = %q, want %q", result.Snapshot.Serial, "123456789")
		}
		if result.NextInterval != time.Minute {
			t.Errorf("result.NextInterval = %v, want %v", result.NextInterval, time.Minute)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result within 2s; first cycle should fire immediately")
	}
}

// TestScheduler_ResultsChannelClosesOnStop verifies the normal lifecycle:
// Start followed by Stop results in clean shutdown with the results channel
// closed.
func TestScheduler_ResultsChannelClosesOnStop(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())
	scheduler.Start(context.Background())

	// drain results channel to prevent blocking
	go func() {
		for range scheduler.Results() {
		}
	}()

	// give the scheduler a moment to start polling
	time.Sleep(50 * time.Millisecond)

	scheduler.Stop()

	select {
	case _, ok := <-scheduler.Results():
		if ok {
			t.Error("expected results channel to be closed after Stop()")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for results channel to close")
	}
}

// TestScheduler_StartAfterStop verifies that a stopped scheduler cannot be
// restarted; Start after Stop is a no-op.
func TestScheduler_StartAfterStop(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())
	scheduler.Stop()
	scheduler.Start(context.Background())

	select {
	case _, ok := <-scheduler.Results():
		if ok {
			t.Error("expected no results after Start-after-Stop")
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("results channel should already be closed")
	}
}

// TestScheduler_ContextCancellation verifies that cancelling the context
// passed to Start halts polling.
func TestScheduler_ContextCancellation(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	go func() {
		for range scheduler.Results() {
		}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancellation")
	}
}

// TestScheduler_MultipleTargets verifies that independent inverters each
// produce results.
func TestScheduler_MultipleTargets(t *testing.T) {
	targets := []Target{
		{Name: "roof", Address: "192.168.1.40", BaseInterval: time.Minute},
		{Name: "garage", Address: "192.168.1.41", BaseInterval: time.Minute},
		{Name: "placeholder", Address: "", BaseInterval: time.Minute},
	}
	scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	seen := make(map[string]bool)
	timeout := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case result := <-scheduler.Results():
			seen[result.Name] = true
		case <-timeout:
			t.Fatalf("only saw results from %v, want all three inverters", seen)
		}
	}
}

// TestScheduler_ConcurrentStartStop verifies that calling Start() and Stop()
// concurrently does not cause a race condition or panic.
// Run with: go test -race ./internal/poll/...
func TestScheduler_ConcurrentStartStop(t *testing.T) {
	targets := []Target{{Name: "test", Address: "192.168.1.40"}}

	// run multiple iterations to increase chance of catching races
	for i := 0; i < 100; i++ {
		scheduler := NewScheduler(targets, schedulerFetcher(), testLogger())

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			scheduler.Start(context.Background())
		}()

		go func() {
			defer wg.Done()
			scheduler.Stop()
		}()

		wg.Wait()

		// drain any remaining results
		for range scheduler.Results() {
		}
	}
}
