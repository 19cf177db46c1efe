package generator

import "time"

// StagnationMonitor remembers when the current streak of duplicate patterns
// began. The zero value has no streak.
type StagnationMonitor struct {
	start  time.Duration
	active bool
}

// Reset clears the streak.
func (m *StagnationMonitor) Reset() {
	m.start = 0
	m.active = false
}

// MarkDuplicate records elapsed as the streak start unless a streak is
// already running. It reports whether a new streak began.
func (m *StagnationMonitor) MarkDuplicate(elapsed time.Duration) bool {
	if m.active {
		return false
	}
	m.start = elapsed
	m.active = true
	return true
}

// Active reports whether a streak is running.
func (m *StagnationMonitor) Active() bool {
	return m.active
}

// Start returns the elapsed time at which the running streak began.
func (m *StagnationMonitor) Start() time.Duration {
	return m.start
}

// Exceeded reports whether a running streak has lasted strictly longer than
// limit at elapsed.
func (m *StagnationMonitor) Exceeded(elapsed, limit time.Duration) bool {
	return m.active && elapsed-m.start > limit
}

type stagnationAction int

const (
	stagnationEnableBlacklisting stagnationAction = iota
	stagnationTerminate
)

// decideOnStagnation applies the escalation policy once the stagnation limit
// is exceeded: escalate to blacklisting once if allowed, otherwise stop.
func decideOnStagnation(blacklistOnStagnation, blacklisting bool) (stagnationAction, StopReason) {
	switch {
	case !blacklistOnStagnation:
		return stagnationTerminate, StopReasonStagnation
	case blacklisting:
		return stagnationTerminate, StopReasonStagnationBlacklisted
	default:
		return stagnationEnableBlacklisting, StopReasonNone
	}
}
