package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry           *prometheus.Registry
	evaluations        *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	activeSessions     prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumen_evaluations_total",
			Help: "Evaluated inputs by outcome.",
		}, []string{"endpoint", "outcome"}),
		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lumen_evaluation_duration_seconds",
			Help:    "Time to tokenize, parse and evaluate one input.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lumen_sessions_active",
			Help: "Sessions currently held by the server.",
		}),
	}
	m.registry.MustRegister(m.evaluations, m.evaluationDuration, m.activeSessions)
	return m
}
