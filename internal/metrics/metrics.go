// Package metrics records generator runs as Prometheus metrics on a private
// registry and exports them in the text exposition format, suitable for the
// node_exporter textfile collector.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/papapumpkin/mcegar/internal/generator"
)

const (
	namespace = "mcegar"

	// OutcomeLabel distinguishes accepted patterns from duplicates.
	OutcomeLabel = "outcome"
	// ReasonLabel carries the blacklisting cause or the stop reason.
	ReasonLabel = "reason"

	// OutcomeAccepted labels patterns added to the collection.
	OutcomeAccepted = "accepted"
	// OutcomeDuplicate labels patterns that were already present.
	OutcomeDuplicate = "duplicate"
)

// Recorder is a generator.Hook that updates Prometheus metrics from run
// events. Each Recorder owns its registry.
type Recorder struct {
	registry *prometheus.Registry

	iterations       prometheus.Counter
	patterns         *prometheus.CounterVec
	pdbSize          prometheus.Histogram
	blacklistSize    prometheus.Histogram
	remainingSize    prometheus.Gauge
	blacklisting     *prometheus.CounterVec
	stagnation       prometheus.Counter
	runs             *prometheus.CounterVec
	runDuration      prometheus.Gauge
	iterationSeconds prometheus.Gauge
	collectionSize   prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered on a fresh
// registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Total solver calls made by the generator",
		}),
		patterns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_total",
			Help:      "Patterns returned by the solver, by outcome",
		}, []string{OutcomeLabel}),
		pdbSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pdb_size",
			Help:      "Size in abstract states of every PDB returned by the solver",
			Buckets:   prometheus.ExponentialBuckets(2, 4, 12),
		}),
		blacklistSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blacklist_size",
			Help:      "Number of variables blacklisted per solver call while blacklisting is active",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		remainingSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_collection_size",
			Help:      "Collection size budget left after the latest iteration",
		}),
		blacklisting: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blacklisting_enabled_total",
			Help:      "Times blacklisting was switched on, by cause",
		}, []string{ReasonLabel}),
		stagnation: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stagnation_streaks_total",
			Help:      "Streaks of duplicate patterns started",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs, by stop reason",
		}, []string{ReasonLabel}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the latest finished run",
		}),
		iterationSeconds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_iteration_seconds",
			Help:      "Mean wall time per iteration of the latest finished run",
		}),
		collectionSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size",
			Help:      "Summed PDB size of the latest finished collection",
		}),
	}
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// OnEvent implements generator.Hook.
func (r *Recorder) OnEvent(_ context.Context, e generator.Event) {
	switch e.Kind {
	case generator.EventIteration:
		r.iterations.Inc()
		outcome := OutcomeDuplicate
		if e.Accepted {
			outcome = OutcomeAccepted
		}
		r.patterns.WithLabelValues(outcome).Inc()
		r.pdbSize.Observe(float64(e.PDBSize))
		if len(e.Blacklist) > 0 {
			r.blacklistSize.Observe(float64(len(e.Blacklist)))
		}
		r.remainingSize.Set(float64(e.RemainingSize))
	case generator.EventBlacklistingEnabled:
		r.blacklisting.WithLabelValues(e.Reason).Inc()
	case generator.EventStagnationStarted:
		r.stagnation.Inc()
	case generator.EventFinished:
		r.runs.WithLabelValues(e.Reason).Inc()
		if e.Stats != nil {
			r.runDuration.Set(e.Stats.Elapsed.Seconds())
			r.iterationSeconds.Set(e.Stats.MeanIterationTime.Seconds())
			r.collectionSize.Set(float64(e.Stats.CollectionSize))
		}
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
