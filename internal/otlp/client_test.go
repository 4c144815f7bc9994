// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package otlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/log"

	"github.com/elastic/graphzab/internal/bridge"
)

func TestOutcomeToSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcome  bridge.Outcome
		expected log.Severity
	}{
		{name: "aggregated maps to SeverityInfo", outcome: bridge.OutcomeAggregated, expected: log.SeverityInfo},
		{name: "no data maps to SeverityDebug", outcome: bridge.OutcomeNoData, expected: log.SeverityDebug},
		{name: "failed maps to SeverityWarn", outcome: bridge.OutcomeFailed, expected: log.SeverityWarn},
		{name: "unknown defaults to SeverityInfo", outcome: bridge.Outcome("other"), expected: log.SeverityInfo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := outcomeToSeverity(tc.outcome); got != tc.expected {
				t.Errorf("outcomeToSeverity(%q) = %v, want %v", tc.outcome, got, tc.expected)
			}
		})
	}
}

func TestFetchRecord(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	rec := fetchRecord(bridge.FetchEvent{
		Host:       "web2",
		MetricSpec: "cpu.load",
		Query:      "http://graphite/render?target=web2.cpu.load",
		Elapsed:    250 * time.Millisecond,
		Outcome:    bridge.OutcomeFailed,
		Err:        errors.New("timeout"),
	}, now)

	if !rec.Timestamp().Equal(now) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), now)
	}
	if rec.Severity() != log.SeverityWarn || rec.SeverityText() != "failed" {
		t.Errorf("severity = %v %q", rec.Severity(), rec.SeverityText())
	}

	attrs := map[string]log.Value{}
	rec.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	if attrs["zabbix.host"].AsString() != "web2" {
		t.Errorf("zabbix.host = %v", attrs["zabbix.host"])
	}
	if attrs["graphzab.elapsed_ms"].AsFloat64() != 250 {
		t.Errorf("elapsed_ms = %v", attrs["graphzab.elapsed_ms"])
	}
	if attrs["error.message"].AsString() != "timeout" {
		t.Errorf("error.message = %v", attrs["error.message"])
	}
}

func TestNew_Close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := New(ctx, Config{Endpoint: "127.0.0.1:1", Insecure: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Endpoint() != "127.0.0.1:1" {
		t.Errorf("Endpoint = %q", c.Endpoint())
	}
	// Nothing was recorded, so shutdown has nothing to flush.
	if err := c.Close(ctx); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
