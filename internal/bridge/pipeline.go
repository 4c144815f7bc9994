// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Pipeline runs discovery, collection and delivery in sequence.
type Pipeline struct {
	discovery *Discovery
	collector *Collector
	forwarder *Forwarder
	pattern   string
	dryRun    bool
	logger    *zap.Logger
	tracer    trace.Tracer
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Pattern string // Item key pattern
	DryRun  bool   // Stop before delivery and return the outbound batch
	Logger  *zap.Logger
}

// NewPipeline wires the three stages together.
func NewPipeline(d *Discovery, c *Collector, f *Forwarder, opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		discovery: d,
		collector: c,
		forwarder: f,
		pattern:   opts.Pattern,
		dryRun:    opts.DryRun,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Run performs one sync. Discovery and delivery failures are returned;
// per-item fetch failures only show up in the report.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "graphzab.run", trace.WithAttributes(
		attribute.String("graphzab.pattern", p.pattern),
		attribute.Bool("graphzab.dry_run", p.dryRun),
	))
	defer func() {
		report.Duration = time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	batch, err := p.discovery.Discover(ctx, p.pattern)
	if err != nil {
		return report, err
	}
	report.KeyName = batch.KeyName

	stats := p.collector.Collect(ctx, batch.Items)
	report.Aggregated = stats.Aggregated
	report.NoData = stats.NoData
	report.Failed = stats.Failed
	span.SetAttributes(
		attribute.Int("graphzab.items", len(batch.Items)),
		attribute.Int("graphzab.aggregated", stats.Aggregated),
		attribute.Int("graphzab.failed", stats.Failed),
	)

	if p.dryRun {
		report.Outbound = Outbound(batch.KeyName, batch.Items)
		report.Processed = len(batch.Items)
		p.logger.Info("processed", zap.Int("count", report.Processed), zap.Bool("dry_run", true))
		return report, nil
	}

	processed, res, err := p.forwarder.forward(ctx, batch.KeyName, batch.Items)
	report.Processed = processed
	if err != nil {
		return report, err
	}
	report.Sent = stats.Aggregated
	report.Delivery = res

	p.logger.Info("processed", zap.Int("count", report.Processed))
	return report, nil
}
