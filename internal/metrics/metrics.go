// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoreComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_score_computations_total",
			Help: "Total number of lead scores computed",
		},
		[]string{"trigger"},
	)

	ScoreTotals = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_score_total",
			Help:    "Distribution of computed lead score totals",
			Buckets: []float64{20, 40, 60, 80, 100},
		},
	)

	ScoreCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_score_cache_lookups_total",
			Help: "Score cache lookups by result",
		},
		[]string{"result"},
	)

	HotLeadCrossings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_score_hot_crossings_total",
			Help: "Leads whose stored score crossed into the very high band",
		},
	)

	RecalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_score_recalculation_duration_seconds",
			Help:    "Duration of dealer-wide score recalculations",
			Buckets: prometheus.DefBuckets,
		},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_processed_total",
			Help: "Background jobs processed by task type and outcome",
		},
		[]string{"task_type", "outcome"},
	)

	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_enqueued_total",
			Help: "Background jobs enqueued by task type",
		},
		[]string{"task_type"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Outbound notifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Trigger labels for ScoreComputations.
const (
	TriggerRead    = "read"
	TriggerWrite   = "write"
	TriggerRefresh = "refresh"
)
