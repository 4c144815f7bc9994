// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/elastic/graphzab/internal/zabbix"
)

// Forwarder delivers aggregated work items to the sink.
type Forwarder struct {
	sink   Sink
	logger *zap.Logger
}

// NewForwarder creates a Forwarder. A nil logger disables logging.
func NewForwarder(sink Sink, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{sink: sink, logger: logger}
}

// Outbound builds one sink value per item that carries a result. The key is
// rebuilt as keyName[metricSpec].
func Outbound(keyName string, items []*WorkItem) []zabbix.Metric {
	metrics := make([]zabbix.Metric, 0, len(items))
	for _, item := range items {
		if item.Result == nil {
			continue
		}
		metrics = append(metrics, zabbix.Metric{
			Host:  item.Host,
			Key:   keyName + "[" + item.MetricSpec + "]",
			Value: item.Result.Value,
			Clock: item.Result.Timestamp,
		})
	}
	return metrics
}

// Forward sends all aggregated items in one call and returns the number of
// items considered, which includes items that had nothing to send.
func (f *Forwarder) Forward(ctx context.Context, keyName string, items []*WorkItem) (int, error) {
	n, _, err := f.forward(ctx, keyName, items)
	return n, err
}

func (f *Forwarder) forward(ctx context.Context, keyName string, items []*WorkItem) (int, zabbix.SendResult, error) {
	metrics := Outbound(keyName, items)
	if len(metrics) == 0 {
		f.logger.Info("nothing to send", zap.Int("items", len(items)))
		return len(items), zabbix.SendResult{}, nil
	}

	res, err := f.sink.Send(ctx, metrics)
	if err != nil {
		return len(items), res, &DeliveryError{Addr: f.sink.Addr(), Count: len(metrics), Err: err}
	}
	f.logger.Info("sent",
		zap.String("addr", f.sink.Addr()),
		zap.Int("values", len(metrics)),
		zap.Int("accepted", res.Processed),
		zap.Int("rejected", res.Failed))
	if res.Failed > 0 {
		f.logger.Warn("server rejected values; check that hosts and trapper items exist",
			zap.Int("rejected", res.Failed))
	}
	return len(items), res, nil
}
