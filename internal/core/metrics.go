package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linkAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patomove",
		Subsystem: "linking",
		Name:      "attempts_total",
		Help:      "Genome link attempts by outcome (linked, conflict, not_found, error).",
	}, []string{"outcome"})

	pipelineCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patomove",
		Subsystem: "pipeline",
		Name:      "callbacks_total",
		Help:      "Pipeline webhook callbacks by job kind and terminal status.",
	}, []string{"kind", "status"})
)
