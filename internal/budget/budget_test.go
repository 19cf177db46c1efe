package budget

import (
	"math"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"
)

func TestTracker_Countdown(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	tr := NewTracker(fc, 10*time.Second)

	if tr.Elapsed() != 0 {
		t.Errorf("Elapsed = %v, want 0", tr.Elapsed())
	}
	if tr.Expired() {
		t.Error("fresh tracker should not be expired")
	}

	fc.Step(4 * time.Second)
	if got := tr.Remaining(); got != 6*time.Second {
		t.Errorf("Remaining = %v, want 6s", got)
	}

	fc.Step(6 * time.Second)
	if !tr.Expired() {
		t.Error("tracker should expire exactly at the limit")
	}
	fc.Step(time.Second)
	if got := tr.Remaining(); got != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", got)
	}
}

func TestTracker_ZeroLimitExpiresImmediately(t *testing.T) {
	t.Parallel()
	tr := NewTracker(clocktesting.NewFakeClock(time.Unix(0, 0)), 0)
	if !tr.Expired() {
		t.Error("zero limit should be expired")
	}
	neg := NewTracker(clocktesting.NewFakeClock(time.Unix(0, 0)), -time.Second)
	if neg.Limit() != 0 {
		t.Errorf("negative limit = %v, want 0", neg.Limit())
	}
}

func TestTracker_Unlimited(t *testing.T) {
	t.Parallel()
	fc := clocktesting.NewFakeClock(time.Unix(0, 0))
	tr := NewTracker(fc, Unlimited)
	fc.Step(1000 * time.Hour)
	if tr.Expired() {
		t.Error("unlimited tracker should never expire")
	}
	if tr.Remaining() != Unlimited {
		t.Errorf("Remaining = %v, want Unlimited", tr.Remaining())
	}
}

func TestFromSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{1.5, 1500 * time.Millisecond},
		{100, 100 * time.Second},
		{math.Inf(1), Unlimited},
		{1e300, Unlimited},
	}
	for _, tt := range tests {
		if got := FromSeconds(tt.in); got != tt.want {
			t.Errorf("FromSeconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
