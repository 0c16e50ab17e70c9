package diagnose

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for requests that never reach the matcher.
const (
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	// DiagnoseTotal counts diagnose calls.
	// Labels: outcome (matched, heuristic, generic, invalid, error)
	DiagnoseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "diagnose_total",
			Help:      "Total number of diagnose requests by outcome",
		},
		[]string{"outcome"},
	)

	// DiagnoseDuration tracks end-to-end diagnose latency including both store round trips.
	DiagnoseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "folio",
			Name:      "diagnose_duration_seconds",
			Help:      "Duration of diagnose requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PatternMutations counts admin changes to the pattern catalog.
	// Labels: op (create, update, delete, convert)
	PatternMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "patterns",
			Name:      "mutations_total",
			Help:      "Total number of pattern catalog changes by operation",
		},
		[]string{"op"},
	)
)
