// Package metrics exposes Prometheus instrumentation for the optimizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OptimizationsTotal counts completed optimization calls by the
	// strategy that produced the final plan and its outcome.
	OptimizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barcut_optimizations_total",
		Help: "Completed optimization calls by final strategy and outcome",
	}, []string{"strategy", "outcome"})

	// FallbacksTotal counts pattern-search failures that fell back to
	// greedy placement, by reason.
	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barcut_fallbacks_total",
		Help: "Pattern-search failures recovered by the greedy placer",
	}, []string{"reason"})

	// PatternsGenerated observes how many patterns survived filtering
	// per pattern-search run.
	PatternsGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "barcut_patterns_generated",
		Help:    "Patterns surviving utilization and dominance filters per run",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})

	// SolveDuration observes end-to-end optimization wall time.
	SolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "barcut_solve_duration_seconds",
		Help:    "End-to-end optimization duration",
		Buckets: prometheus.DefBuckets,
	})
)
