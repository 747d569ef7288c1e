package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudsight_analysis_runs_total",
		Help: "Total number of analysis runs, labelled by outcome.",
	}, []string{"status"})

	TransactionsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraudsight_transactions_analyzed_total",
		Help: "Total number of transactions fed through the engine.",
	})

	AccountsFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraudsight_accounts_flagged_total",
		Help: "Total number of accounts flagged above the suspicion threshold.",
	})

	RingsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudsight_rings_detected_total",
		Help: "Total number of fraud rings detected, labelled by pattern type.",
	}, []string{"pattern_type"})

	SearchTruncations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudsight_search_truncations_total",
		Help: "Budget exhaustions in the bounded searches, labelled by detector.",
	}, []string{"detector"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraudsight_analysis_duration_seconds",
		Help:    "End-to-end analysis run latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
