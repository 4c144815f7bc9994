// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"

	"go.uber.org/zap"
)

// Observer receives one event per completed fetch. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveFetch(ctx context.Context, ev FetchEvent)
}

// Observers fans an event out to several observers.
type Observers []Observer

// ObserveFetch implements Observer.
func (o Observers) ObserveFetch(ctx context.Context, ev FetchEvent) {
	for _, obs := range o {
		obs.ObserveFetch(ctx, ev)
	}
}

// LogObserver writes the per-fetch log line.
type LogObserver struct {
	Logger *zap.Logger
}

// ObserveFetch implements Observer.
func (l LogObserver) ObserveFetch(_ context.Context, ev FetchEvent) {
	l.Logger.Info("fetch",
		zap.String("query", ev.Query),
		zap.String("host", ev.Host),
		zap.String("key", ev.MetricSpec),
		zap.Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000),
		zap.String("outcome", string(ev.Outcome)))
	if ev.Err != nil {
		l.Logger.Warn("fetch failed", zap.Error(ev.Err))
	}
}
