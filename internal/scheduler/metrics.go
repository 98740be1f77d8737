package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourlog_sweep_runs_total",
			Help: "Scheduled sweep invocations by result",
		},
		[]string{"interval", "result"},
	)

	sweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourlog_sweep_duration_seconds",
			Help:    "Scheduled sweep duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"interval"},
	)
)
