// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry exposes the bridge's own health as Prometheus metrics.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/elastic/graphzab/internal/bridge"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	fetchDuration *prometheus.HistogramVec
	items         *prometheus.CounterVec
	sent          prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Gauge
	lastRun       prometheus.Gauge
	lastProcessed prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphzab_fetch_duration_seconds",
			Help:    "Graphite render latency per item.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"outcome"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphzab_items_total",
			Help: "Items fetched, by outcome.",
		}, []string{"outcome"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphzab_sent_total",
			Help: "Values delivered to the Zabbix trapper.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphzab_runs_total",
			Help: "Sync runs, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphzab_run_duration_seconds",
			Help: "Duration of the last sync run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphzab_last_run_timestamp_seconds",
			Help: "Unix time the last sync run finished.",
		}),
		lastProcessed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphzab_last_run_processed",
			Help: "Items considered by the last sync run.",
		}),
	}
	m.registry.MustRegister(m.fetchDuration, m.items, m.sent, m.runs, m.runDuration, m.lastRun, m.lastProcessed)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFetch implements bridge.Observer.
func (m *Metrics) ObserveFetch(_ context.Context, ev bridge.FetchEvent) {
	outcome := string(ev.Outcome)
	m.fetchDuration.WithLabelValues(outcome).Observe(ev.Elapsed.Seconds())
	m.items.WithLabelValues(outcome).Inc()
}

// RecordRun records the outcome of one pipeline run.
func (m *Metrics) RecordRun(report bridge.Report, err error, finished time.Time) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.sent.Add(float64(report.Sent))
	m.runDuration.Set(report.Duration.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
	m.lastProcessed.Set(float64(report.Processed))
}

// Push sends the current values to a Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
