// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/elastic/graphzab/internal/zabbix"
)

// Discovery builds the work list for a run from the registry.
type Discovery struct {
	registry Registry
	logger   *zap.Logger
}

// NewDiscovery creates a Discovery. A nil logger disables logging.
func NewDiscovery(registry Registry, logger *zap.Logger) *Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{registry: registry, logger: logger}
}

// ParseKey splits an item key such as "graphite[cpu.load]" into its name and
// the text between the first '[' and the last ']'.
func ParseKey(key string) (name, spec string, ok bool) {
	open := strings.Index(key, "[")
	end := strings.LastIndex(key, "]")
	if open < 0 || end < open {
		return key, "", false
	}
	return key[:open], key[open+1 : end], true
}

// Discover lists items matching pattern and resolves their hosts.
//
// The key name comes from the first item and is used for every outbound key.
// Items with a different name are kept and logged; items without a
// parameter list are skipped.
func (d *Discovery) Discover(ctx context.Context, pattern string) (*Batch, error) {
	items, err := d.registry.Items(ctx, pattern)
	if err != nil {
		return nil, &DiscoveryError{Pattern: pattern, Err: err}
	}
	if len(items) == 0 {
		return nil, &DiscoveryError{Pattern: pattern, Err: ErrNoItems}
	}

	keyName, _, ok := ParseKey(items[0].Key)
	if !ok {
		return nil, &DiscoveryError{Pattern: pattern, Err: fmt.Errorf("%w: %q", ErrMalformedKey, items[0].Key)}
	}

	type pending struct {
		hostID zabbix.HostID
		spec   string
	}
	work := make([]pending, 0, len(items))
	seen := make(map[zabbix.HostID]struct{})
	for _, it := range items {
		name, spec, ok := ParseKey(it.Key)
		if !ok {
			d.logger.Warn("skipping item without parameters",
				zap.String("key", it.Key), zap.Stringer("hostid", it.HostID))
			continue
		}
		if name != keyName {
			d.logger.Warn("item key name differs from batch key name",
				zap.String("key", it.Key), zap.String("key_name", keyName))
		}
		work = append(work, pending{hostID: it.HostID, spec: spec})
		seen[it.HostID] = struct{}{}
	}

	ids := make([]zabbix.HostID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names, err := d.ResolveHosts(ctx, ids)
	if err != nil {
		return nil, &DiscoveryError{Pattern: pattern, Err: err}
	}

	batch := &Batch{KeyName: keyName, Items: make([]*WorkItem, 0, len(work))}
	for _, w := range work {
		batch.Items = append(batch.Items, &WorkItem{
			HostID:     w.hostID,
			Host:       names[w.hostID],
			MetricSpec: w.spec,
		})
	}

	d.logger.Debug("discovered items",
		zap.String("pattern", pattern),
		zap.String("key_name", keyName),
		zap.Int("items", len(batch.Items)),
		zap.Int("hosts", len(ids)))
	return batch, nil
}

// ResolveHosts maps every id to a host name. Any id the registry does not
// know is an error.
func (d *Discovery) ResolveHosts(ctx context.Context, ids []zabbix.HostID) (map[zabbix.HostID]string, error) {
	if len(ids) == 0 {
		return map[zabbix.HostID]string{}, nil
	}
	names, err := d.registry.HostNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve hosts: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedHost, strings.Join(missing, ", "))
	}
	return names, nil
}
