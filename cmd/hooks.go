package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/generator"
	"github.com/papapumpkin/mcegar/internal/telemetry"
)

// telemetryHook forwards generator events to a JSONL emitter. A nil emitter
// makes it a no-op.
type telemetryHook struct {
	emitter *telemetry.Emitter
	runID   string
	clock   clock.PassiveClock
	logger  *zap.Logger
}

func newTelemetryHook(em *telemetry.Emitter, runID string, c clock.PassiveClock, l *zap.Logger) *telemetryHook {
	if c == nil {
		c = clock.RealClock{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &telemetryHook{emitter: em, runID: runID, clock: c, logger: l}
}

// OnEvent implements generator.Hook.
func (h *telemetryHook) OnEvent(_ context.Context, e generator.Event) {
	evt := telemetry.Event{
		Timestamp: h.clock.Now(),
		RunID:     h.runID,
		Iteration: e.Iteration,
	}
	switch e.Kind {
	case generator.EventIteration:
		evt.Kind = telemetry.KindIteration
		evt.Data = map[string]any{
			"goal":           e.Goal.String(),
			"blacklist_size": len(e.Blacklist),
			"pattern":        e.Pattern.String(),
			"pdb_size":       e.PDBSize,
			"accepted":       e.Accepted,
			"remaining_size": e.RemainingSize,
			"elapsed_ms":     e.Elapsed.Milliseconds(),
		}
	case generator.EventBlacklistingEnabled:
		evt.Kind = telemetry.KindBlacklistingEnabled
		evt.Data = map[string]any{"reason": e.Reason, "elapsed_ms": e.Elapsed.Milliseconds()}
	case generator.EventStagnationStarted:
		evt.Kind = telemetry.KindStagnationStarted
		evt.Data = map[string]any{"elapsed_ms": e.Elapsed.Milliseconds()}
	case generator.EventFinished:
		evt.Kind = telemetry.KindRunDone
		data := map[string]any{"stop_reason": e.Reason}
		if e.Stats != nil {
			data["patterns"] = e.Stats.Accepted
			data["collection_size"] = e.Stats.CollectionSize
			data["mean_iteration_ms"] = e.Stats.MeanIterationTime.Milliseconds()
			data["elapsed_ms"] = e.Stats.Elapsed.Milliseconds()
		}
		evt.Data = data
	default:
		return
	}
	h.emit(evt)
}

// runStarted records the start of a run on taskName.
func (h *telemetryHook) runStarted(taskName string, b generator.Budgets) {
	h.emit(telemetry.Event{
		Timestamp: h.clock.Now(),
		Kind:      telemetry.KindRunStart,
		RunID:     h.runID,
		Data: map[string]any{
			"task":                taskName,
			"random_seed":         b.RandomSeed,
			"max_collection_size": b.MaxCollectionSize,
			"total_max_time_ms":   durationMillis(b.TotalMaxTime),
		},
	})
}

// runFailed records a run aborted by err.
func (h *telemetryHook) runFailed(err error) {
	h.emit(telemetry.Event{
		Timestamp: h.clock.Now(),
		Kind:      telemetry.KindRunFailed,
		RunID:     h.runID,
		Data:      map[string]any{"error": err.Error()},
	})
}

func (h *telemetryHook) emit(evt telemetry.Event) {
	if err := h.emitter.Emit(evt); err != nil {
		h.logger.Warn("dropping telemetry event", zap.String("kind", evt.Kind), zap.Error(err))
	}
}

// durationMillis renders a budget in milliseconds, -1 for unlimited.
func durationMillis(d time.Duration) int64 {
	if d == budget.Unlimited {
		return -1
	}
	return d.Milliseconds()
}
