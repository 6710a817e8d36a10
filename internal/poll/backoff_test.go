package poll

import (
	"testing"
	"time"
)

// TestApplyBackoff_Bounds verifies that the computed interval never leaves
// [MinInterval, MaxInterval] regardless of starting interval, failure count
// or jitter direction. Runs each case many times because jitter is random.
func TestApplyBackoff_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		current   time.Duration
		failCount int
	}{
		{"first failure from tiny base", 1 * time.Second, 1},
		{"first failure from default base", 20 * time.Second, 1},
		{"second failure", 20 * time.Second, 2},
		{"deep failure streak", 120 * time.Second, 10},
		{"very deep failure streak", 120 * time.Second, 1000},
		{"already at cap", MaxInterval, 5},
		{"below floor", 1 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				got := applyBackoff(tt.current, tt.failCount)
				if got < MinInterval || got > MaxInterval {
					t.Fatalf("applyBackoff(%v, %d) = %v, want within [%v, %v]",
						tt.current, tt.failCount, got, MinInterval, MaxInterval)
				}
			}
		})
	}
}

// TestApplyBackoff_GrowsWithFailures verifies that the interval widens as
// failures accumulate: starting from the base, repeated failures must reach
// the cap region rather than stay near the base.
func TestApplyBackoff_GrowsWithFailures(t *testing.T) {
	interval := 20 * time.Second
	for f := 1; f <= 6; f++ {
		interval = applyBackoff(interval, f)
	}

	// after six doublings even the most unlucky jitter sequence is pinned
	// against the cap
	if interval < MaxInterval-time.Duration(float64(MaxInterval)*jitterFraction) {
		t.Errorf("after 6 failures interval = %v, want near %v", interval, MaxInterval)
	}
}

// TestApplyBackoff_Jitters verifies that repeated calls with identical inputs
// do not all return the same value, i.e. jitter is actually applied. Uses a
// mid-range interval so the clamp cannot mask the jitter.
func TestApplyBackoff_Jitters(t *testing.T) {
	seen := make(map[time.Duration]struct{})
	for i := 0; i < 50; i++ {
		seen[applyBackoff(30*time.Second, 1)] = struct{}{}
	}
	if len(seen) < 2 {
		t.Error("applyBackoff() returned identical values across 50 calls, jitter appears disabled")
	}
}
