// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package otlp exports graphzab traces and fetch events over OTLP/HTTP.
package otlp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/elastic/graphzab/internal/bridge"
)

// Client owns the OTLP trace and log pipelines
type Client struct {
	logs     *sdklog.LoggerProvider
	traces   *sdktrace.TracerProvider
	logger   log.Logger
	endpoint string
}

// Config holds OTLP client configuration
type Config struct {
	Endpoint       string // OTLP HTTP endpoint (default: localhost:4318)
	ServiceName    string
	ServiceVersion string
	Insecure       bool // Use HTTP instead of HTTPS
}

// New creates the exporters and installs the tracer provider globally.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4318"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "graphzab"
	}

	logOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		logOpts = append(logOpts, otlploghttp.WithInsecure())
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}

	logExporter, err := otlploghttp.New(ctx, logOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	logs := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	traces := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Client{
		logs:     logs,
		traces:   traces,
		logger:   logs.Logger("graphzab"),
		endpoint: cfg.Endpoint,
	}, nil
}

// Endpoint returns the configured collector endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ObserveFetch implements bridge.Observer by emitting one log record per fetch.
func (c *Client) ObserveFetch(ctx context.Context, ev bridge.FetchEvent) {
	c.logger.Emit(ctx, fetchRecord(ev, time.Now()))
}

// Close flushes and shuts down both pipelines
func (c *Client) Close(ctx context.Context) error {
	return errors.Join(c.traces.Shutdown(ctx), c.logs.Shutdown(ctx))
}

func fetchRecord(ev bridge.FetchEvent, now time.Time) log.Record {
	var record log.Record
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetSeverity(outcomeToSeverity(ev.Outcome))
	record.SetSeverityText(string(ev.Outcome))
	record.SetBody(log.StringValue("fetch " + ev.Query))

	record.AddAttributes(
		log.String("zabbix.host", ev.Host),
		log.String("zabbix.key", ev.MetricSpec),
		log.String("graphite.query", ev.Query),
		log.Float64("graphzab.elapsed_ms", float64(ev.Elapsed.Microseconds())/1000),
		log.String("graphzab.outcome", string(ev.Outcome)),
		log.Int("graphzab.samples", ev.Samples),
	)
	if ev.Err != nil {
		record.AddAttributes(log.String("error.message", ev.Err.Error()))
	}
	return record
}

// outcomeToSeverity maps a fetch outcome to an OTel severity
func outcomeToSeverity(o bridge.Outcome) log.Severity {
	switch o {
	case bridge.OutcomeFailed:
		return log.SeverityWarn
	case bridge.OutcomeNoData:
		return log.SeverityDebug
	default:
		return log.SeverityInfo
	}
}
