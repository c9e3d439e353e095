package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cluster view capture metrics
	captureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faros_snapshot_capture_duration_seconds",
			Help:    "Time taken to capture a complete cluster view",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	captureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faros_snapshot_capture_total",
			Help: "Total number of cluster view capture attempts",
		},
		[]string{"status"}, // success or error
	)

	captureSectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faros_snapshot_section_duration_seconds",
			Help:    "Time taken to capture individual view sections",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"section"}, // pods or nodes
	)

	captureResourceCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faros_snapshot_resources",
			Help: "Number of resources in the last captured cluster view",
		},
	)
)
