package poll

import (
	"math"
	"math/rand"
	"time"
)

// Poll interval bounds and backoff tuning. The floor keeps the interval from
// collapsing below a sane minimum even for small base intervals; the cap
// bounds how quiet a persistently-unreachable device can make us.
const (
	MinInterval = 5 * time.Second
	MaxInterval = 120 * time.Second

	backoffBase    = 2.0
	jitterFraction = 0.15

	// warnUntilFails bounds operator-visible log volume: the first
	// consecutive failures log at warning level, the rest at debug.
	warnUntilFails = 3
)

// applyBackoff computes the next poll interval after failCount consecutive
// failures, starting from the current interval.
//
// The interval grows exponentially with the failure count and is clamped to
// [MinInterval, MaxInterval] both before and after jitter is applied, so the
// published interval never leaves the bounds regardless of jitter direction.
// The ±15% jitter keeps many inverters that fail in lockstep (e.g. a shared
// switch going down) from resynchronizing into a thundering herd.
func applyBackoff(current time.Duration, failCount int) time.Duration {
	factor := math.Pow(backoffBase, float64(max(0, failCount-1)))
	base := clampSeconds(current.Seconds() * factor)
	jitter := 1.0 + (rand.Float64()*2-1)*jitterFraction
	return time.Duration(clampSeconds(base*jitter) * float64(time.Second))
}

func clampSeconds(s float64) float64 {
	return math.Min(MaxInterval.Seconds(), math.Max(MinInterval.Seconds(), s))
}
