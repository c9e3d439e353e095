package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faros_query_duration_seconds",
			Help:    "Time taken to fetch and normalize one query",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"kind"}, // pod or node
	)

	queryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faros_query_total",
			Help: "Total number of queries answered",
		},
		[]string{"kind", "status"}, // status: success or error
	)
)
