// Package budget tracks a wall-clock budget against a fixed deadline.
package budget

import (
	"math"
	"time"

	"k8s.io/utils/clock"
)

// Unlimited is the duration used for budgets without a time limit.
const Unlimited = time.Duration(math.MaxInt64)

// Tracker measures elapsed time from its creation against a fixed limit.
type Tracker struct {
	clock clock.PassiveClock
	start time.Time
	limit time.Duration
}

// NewTracker starts a tracker with the given limit. A negative limit is
// treated as zero; Unlimited never expires.
func NewTracker(c clock.PassiveClock, limit time.Duration) *Tracker {
	if c == nil {
		c = clock.RealClock{}
	}
	if limit < 0 {
		limit = 0
	}
	return &Tracker{clock: c, start: c.Now(), limit: limit}
}

// FromSeconds converts a budget in seconds to a duration. Infinite or
// overflowing values map to Unlimited and negative values to zero.
func FromSeconds(s float64) time.Duration {
	switch {
	case math.IsNaN(s) || s <= 0:
		return 0
	case math.IsInf(s, 1) || s >= float64(Unlimited)/float64(time.Second):
		return Unlimited
	default:
		return time.Duration(s * float64(time.Second))
	}
}

// Limit returns the configured limit.
func (t *Tracker) Limit() time.Duration {
	return t.limit
}

// Elapsed returns the time passed since the tracker started.
func (t *Tracker) Elapsed() time.Duration {
	return t.clock.Since(t.start)
}

// Remaining returns the time left before the limit, never negative.
func (t *Tracker) Remaining() time.Duration {
	if t.limit == Unlimited {
		return Unlimited
	}
	if rem := t.limit - t.Elapsed(); rem > 0 {
		return rem
	}
	return 0
}

// Expired reports whether the elapsed time has reached the limit.
func (t *Tracker) Expired() bool {
	return t.limit != Unlimited && t.Elapsed() >= t.limit
}
