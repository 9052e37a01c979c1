package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_sync_runs_total",
			Help: "Total number of sync runs by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	documentsIndexedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_documents_indexed_total",
			Help: "Total number of documents submitted to the search engine",
		},
	)

	documentsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_documents_failed_total",
			Help: "Total number of documents that failed to index",
		},
	)

	syncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_sync_duration_seconds",
			Help:    "Sync run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)
