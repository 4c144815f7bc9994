// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultThreads is the default number of concurrent fetches.
const DefaultThreads = 50

const tracerName = "github.com/elastic/graphzab/internal/bridge"

// Collector fetches and aggregates work items on a bounded worker pool.
type Collector struct {
	source   Source
	threads  int
	observer Observer
	tracer   trace.Tracer
	now      func() time.Time
}

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	Threads  int      // Pool size (default 50)
	Observer Observer // Receives one event per fetch (optional)
}

// CollectStats counts fetch outcomes of one Collect call.
type CollectStats struct {
	Aggregated int
	NoData     int
	Failed     int
}

// NewCollector creates a Collector for source.
func NewCollector(source Source, opts CollectorOptions) *Collector {
	threads := opts.Threads
	if threads <= 0 {
		threads = DefaultThreads
	}
	observer := opts.Observer
	if observer == nil {
		observer = Observers{}
	}
	return &Collector{
		source:   source,
		threads:  threads,
		observer: observer,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// Collect fetches every item and attaches a result to the ones that
// produced data. Each item is handled by exactly one worker; a failing
// fetch leaves its item untouched and does not affect the others.
// Collect returns once every fetch has finished.
func (c *Collector) Collect(ctx context.Context, items []*WorkItem) CollectStats {
	var aggregated, noData, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(c.threads)
	for _, item := range items {
		g.Go(func() error {
			switch c.collectOne(ctx, item) {
			case OutcomeAggregated:
				aggregated.Add(1)
			case OutcomeNoData:
				noData.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return CollectStats{
		Aggregated: int(aggregated.Load()),
		NoData:     int(noData.Load()),
		Failed:     int(failed.Load()),
	}
}

func (c *Collector) collectOne(ctx context.Context, item *WorkItem) Outcome {
	ctx, span := c.tracer.Start(ctx, "graphite.fetch", trace.WithAttributes(
		attribute.String("zabbix.host", item.Host),
		attribute.String("zabbix.key", item.MetricSpec),
	))
	defer span.End()

	query := c.source.BuildQuery(item.Host, item.MetricSpec)
	start := c.now()
	series, err := c.source.Fetch(ctx, query)
	elapsed := c.now().Sub(start)

	ev := FetchEvent{
		Host:       item.Host,
		MetricSpec: item.MetricSpec,
		Query:      query,
		Elapsed:    elapsed,
	}

	switch {
	case err != nil:
		ev.Outcome = OutcomeFailed
		ev.Err = &FetchError{Host: item.Host, MetricSpec: item.MetricSpec, Query: query, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(series) == 0 || len(series[0].Datapoints) == 0:
		ev.Outcome = OutcomeNoData
	default:
		samples := FilterNull(series[0].Datapoints)
		ev.Samples = len(samples)
		if len(samples) == 0 {
			ev.Outcome = OutcomeNoData
			break
		}
		res := Aggregate(samples)
		item.Result = &res
		ev.Outcome = OutcomeAggregated
	}

	span.SetAttributes(
		attribute.String("graphzab.outcome", string(ev.Outcome)),
		attribute.Int("graphzab.samples", ev.Samples),
	)
	c.observer.ObserveFetch(ctx, ev)
	return ev.Outcome
}
