package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline instruments. Registered on the default registry and served by
// promhttp in cmd/server.
var (
	// PipelineRuns counts completed pipeline runs by outcome and provenance.
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mfspulse",
		Name:      "pipeline_runs_total",
		Help:      "Completed pipeline runs by outcome and data provenance.",
	}, []string{"outcome", "provenance"})

	// AdapterFailures counts source adapter failures by adapter and reason.
	AdapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mfspulse",
		Name:      "adapter_failures_total",
		Help:      "Source adapter failures by adapter name and reason code.",
	}, []string{"adapter", "reason"})

	// RowsDropped counts rows discarded during normalization.
	RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mfspulse",
		Name:      "normalize_rows_dropped_total",
		Help:      "Rows dropped during normalization (unparseable date or value).",
	})

	// PipelineDuration observes end-to-end run latency.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mfspulse",
		Name:      "pipeline_run_duration_seconds",
		Help:      "End-to-end pipeline run duration.",
		Buckets:   prometheus.DefBuckets,
	})
)
