package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of search queries by outcome",
		},
		[]string{"outcome"},
	)

	zeroResultSearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_zero_result_queries_total",
			Help: "Total number of searches that returned no results",
		},
	)
)
