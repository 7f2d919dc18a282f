package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_talenta_import_rows_total",
		Help: "Spreadsheet rows processed by the import pipeline, by outcome status.",
	}, []string{"kind", "status"})

	importRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_talenta_import_runs_total",
		Help: "Import runs finished, by outcome.",
	}, []string{"kind", "outcome"})

	importRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_talenta_import_run_duration_seconds",
		Help:    "Wall time of import runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"kind"})
)

func observeImportRow(kind string, status ImportLogStatus) {
	importRowsTotal.WithLabelValues(kind, string(status)).Inc()
}

func observeImportRun(kind string, result *ImportRunResult, elapsed time.Duration) {
	outcome := OutcomeInternalError
	if result != nil {
		outcome = result.Outcome
	}
	importRunsTotal.WithLabelValues(kind, outcome).Inc()
	importRunDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
