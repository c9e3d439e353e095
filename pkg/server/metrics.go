package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API request metrics, recorded by the logging middleware
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faros_http_requests_total",
			Help: "Total number of API requests handled",
		},
		[]string{"path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faros_http_request_duration_seconds",
			Help:    "Time taken to answer one API request",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"path"},
	)
)
