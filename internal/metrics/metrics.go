// Package metrics provides Prometheus metrics for the analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects cache, scheduler and simulation metrics.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec
	FetchErrors  *prometheus.CounterVec
	LeagueRuns   *prometheus.CounterVec
	GlobalRuns   *prometheus.CounterVec
	SimDuration  prometheus.Histogram
	QueueDepth   prometheus.Gauge
}

// New creates a metrics collector with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_cache_hits_total",
				Help: "Cache reads served without an upstream fetch",
			},
			[]string{"class"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_cache_misses_total",
				Help: "Cache reads that triggered an upstream fetch",
			},
			[]string{"class"},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_fetch_errors_total",
				Help: "Upstream fetches that failed",
			},
			[]string{"class"},
		),
		LeagueRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_scheduler_league_runs_total",
				Help: "League cache refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		GlobalRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_scheduler_global_runs_total",
				Help: "Global cache refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		SimDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fpl_simulation_duration_seconds",
				Help:    "Wall time of one predicted-standings simulation",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fpl_scheduler_queue_depth",
				Help: "Leagues currently waiting for a cache refresh",
			},
		),
	}

	registry.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.FetchErrors,
		m.LeagueRuns,
		m.GlobalRuns,
		m.SimDuration,
		m.QueueDepth,
	)

	return m
}

// Registry returns the prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
