// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package bridge implements the Zabbix-to-Graphite sync: discover the items
// Zabbix expects, fetch their recent window from Graphite, reduce each series
// to one value and push the batch back to Zabbix.
package bridge

import (
	"context"
	"time"

	"github.com/elastic/graphzab/internal/graphite"
	"github.com/elastic/graphzab/internal/zabbix"
)

// Registry lists monitored items and resolves host names.
// Implemented by *zabbix.Client.
type Registry interface {
	// Items returns monitored items whose key matches pattern
	Items(ctx context.Context, pattern string) ([]zabbix.Item, error)

	// HostNames maps host ids to host names in a single call
	HostNames(ctx context.Context, ids []zabbix.HostID) (map[zabbix.HostID]string, error)
}

// Source builds and executes time-series queries.
// Implemented by *graphite.Client.
type Source interface {
	// BuildQuery returns the query for a host and metric spec
	BuildQuery(host, metricSpec string) string

	// Fetch executes a query built by BuildQuery
	Fetch(ctx context.Context, query string) ([]graphite.Series, error)
}

// Sink accepts a batch of values. Implemented by *zabbix.Sender.
type Sink interface {
	Send(ctx context.Context, metrics []zabbix.Metric) (zabbix.SendResult, error)
	Addr() string
}

// WorkItem is one monitored item on its way through a run. Result is set by
// the collector when the fetch produced at least one non-null sample.
type WorkItem struct {
	HostID     zabbix.HostID
	Host       string
	MetricSpec string
	Result     *AggregatedResult
}

// Sample is one non-null datapoint.
type Sample struct {
	Timestamp float64
	Value     float64
}

// AggregatedResult is the single value reported for a work item.
type AggregatedResult struct {
	Value     float64
	Timestamp float64
}

// Batch is the output of discovery.
type Batch struct {
	KeyName string
	Items   []*WorkItem
}

// Outcome classifies a single fetch.
type Outcome string

const (
	OutcomeAggregated Outcome = "aggregated"
	OutcomeNoData     Outcome = "no_data"
	OutcomeFailed     Outcome = "failed"
)

// FetchEvent describes one completed fetch.
type FetchEvent struct {
	Host       string
	MetricSpec string
	Query      string
	Elapsed    time.Duration
	Outcome    Outcome
	Samples    int
	Err        error
}

// Report summarizes a pipeline run.
type Report struct {
	KeyName    string
	Processed  int // Items considered, including ones without data
	Aggregated int
	NoData     int
	Failed     int
	Sent       int
	Delivery   zabbix.SendResult
	Duration   time.Duration
	Outbound   []zabbix.Metric // Populated on dry runs only
}
