// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/elastic/graphzab/internal/graphite"
	"github.com/elastic/graphzab/internal/zabbix"
)

// mockRegistry implements the Registry interface for testing
type mockRegistry struct {
	items      []zabbix.Item
	itemsErr   error
	hosts      map[zabbix.HostID]string
	hostsErr   error
	hostCalls  int
	lastIDs    []zabbix.HostID
	lastSearch string
}

func (m *mockRegistry) Items(ctx context.Context, pattern string) ([]zabbix.Item, error) {
	m.lastSearch = pattern
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

func (m *mockRegistry) HostNames(ctx context.Context, ids []zabbix.HostID) (map[zabbix.HostID]string, error) {
	m.hostCalls++
	m.lastIDs = ids
	if m.hostsErr != nil {
		return nil, m.hostsErr
	}
	out := make(map[zabbix.HostID]string)
	for _, id := range ids {
		if name, ok := m.hosts[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// mockSource implements the Source interface. Responses are keyed by target.
type mockSource struct {
	series   map[string][]graphite.Series
	errs     map[string]error
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	block    chan struct{}
}

func (m *mockSource) BuildQuery(host, metricSpec string) string {
	return graphite.BuildTarget(host, metricSpec)
}

func (m *mockSource) Fetch(ctx context.Context, query string) ([]graphite.Series, error) {
	m.calls.Add(1)
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.block != nil {
		<-m.block
	}
	if err, ok := m.errs[query]; ok {
		return nil, err
	}
	return m.series[query], nil
}

// mockSink implements the Sink interface for testing
type mockSink struct {
	mu    sync.Mutex
	sent  [][]zabbix.Metric
	err   error
	reply zabbix.SendResult
}

func (m *mockSink) Send(ctx context.Context, metrics []zabbix.Metric) (zabbix.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, metrics)
	if m.err != nil {
		return zabbix.SendResult{}, m.err
	}
	return m.reply, nil
}

func (m *mockSink) Addr() string { return "zabbix:10051" }

// recordingObserver collects fetch events.
type recordingObserver struct {
	mu     sync.Mutex
	events []FetchEvent
}

func (r *recordingObserver) ObserveFetch(ctx context.Context, ev FetchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

var errTransport = errors.New("connection reset by peer")

func ptr(v float64) *float64 { return &v }

func points(pairs ...[2]float64) []graphite.Datapoint {
	out := make([]graphite.Datapoint, len(pairs))
	for i, p := range pairs {
		out[i] = graphite.Datapoint{Value: ptr(p[0]), Timestamp: p[1]}
	}
	return out
}
