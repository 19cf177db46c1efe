package generator

import (
	"context"
	"time"

	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/task"
)

// EventKind identifies the type of lifecycle event emitted by a run.
type EventKind int

const (
	// EventIteration is emitted after each solver call has been processed.
	EventIteration EventKind = iota
	// EventBlacklistingEnabled is emitted when blacklisting switches on.
	EventBlacklistingEnabled
	// EventStagnationStarted is emitted when a duplicate starts a streak.
	EventStagnationStarted
	// EventFinished is emitted once the loop has terminated normally.
	EventFinished
)

// String returns the snake_case name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventIteration:
		return "iteration"
	case EventBlacklistingEnabled:
		return "blacklisting_enabled"
	case EventStagnationStarted:
		return "stagnation_started"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Blacklisting activation causes reported in Event.Reason.
const (
	// ReasonTrigger means the configured fraction of the time budget passed.
	ReasonTrigger = "trigger"
	// ReasonStagnation means the stagnation limit was hit.
	ReasonStagnation = "stagnation"
)

// Event describes one lifecycle event of a run. Fields not relevant to Kind
// are zero.
type Event struct {
	Kind          EventKind
	Iteration     int
	Elapsed       time.Duration
	Goal          task.Fact
	Blacklist     []int
	Pattern       pattern.Pattern
	PDBSize       int
	Accepted      bool
	RemainingSize int
	Reason        string // Blacklisting cause or stop reason.
	Stats         *Stats // Set on EventFinished.
}

// Hook receives lifecycle events. Implementations must not block and must
// not retain Event.Blacklist.
type Hook interface {
	OnEvent(ctx context.Context, event Event)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx context.Context, event Event)

// OnEvent calls the wrapped function.
func (f HookFunc) OnEvent(ctx context.Context, event Event) { f(ctx, event) }
