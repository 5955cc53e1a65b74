// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the engine's Prometheus instruments.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontmark_rule_runs_total",
				Help: "Total number of rule runs by status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "frontmark_rule_run_duration_seconds",
				Help:    "Duration of single rule runs",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.RunsTotal)
	reg.MustRegister(m.RunDuration)
	return m
}

func (m *Metrics) observeRun(result FileResult, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
