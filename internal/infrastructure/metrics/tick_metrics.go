// Package metrics exposes prometheus instrumentation for the tick
// scheduler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "tycoon"
	subsystem = "scheduler"
)

// TickMetricsCollector records tick run instrumentation. It implements
// simulation.TickMetrics.
type TickMetricsCollector struct {
	tickRunsTotal      *prometheus.CounterVec
	tickDuration       prometheus.Histogram
	facilitiesAdvanced prometheus.Counter
	busyRejections     prometheus.Counter
	facilitiesSkipped  *prometheus.CounterVec
}

// NewTickMetricsCollector creates the collector and registers it with
// the given registry.
func NewTickMetricsCollector(registry *prometheus.Registry) *TickMetricsCollector {
	c := &TickMetricsCollector{
		tickRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_runs_total",
				Help:      "Total number of completed tick runs by trigger type",
			},
			[]string{"trigger"},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Tick run duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
		),
		facilitiesAdvanced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "facilities_advanced_total",
				Help:      "Total number of facility production cycles completed",
			},
		),
		busyRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "busy_rejections_total",
				Help:      "Total number of tick triggers rejected because a run was in flight",
			},
		),
		facilitiesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "facilities_skipped_total",
				Help:      "Total number of facilities skipped during a tick by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		c.tickRunsTotal,
		c.tickDuration,
		c.facilitiesAdvanced,
		c.busyRejections,
		c.facilitiesSkipped,
	)
	return c
}

// RecordTickRun records one completed tick run
func (c *TickMetricsCollector) RecordTickRun(manual bool, duration time.Duration, facilitiesAdvanced int) {
	trigger := "scheduled"
	if manual {
		trigger = "manual"
	}
	c.tickRunsTotal.WithLabelValues(trigger).Inc()
	c.tickDuration.Observe(duration.Seconds())
	c.facilitiesAdvanced.Add(float64(facilitiesAdvanced))
}

// RecordBusyRejection records a trigger rejected by the single-flight guard
func (c *TickMetricsCollector) RecordBusyRejection() {
	c.busyRejections.Inc()
}

// RecordFacilitySkipped records a facility skipped during a tick
func (c *TickMetricsCollector) RecordFacilitySkipped(reason string) {
	c.facilitiesSkipped.WithLabelValues(reason).Inc()
}
