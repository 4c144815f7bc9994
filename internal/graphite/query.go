// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package graphite

import (
	"fmt"
	"net/url"
	"strings"
)

// Placeholders understood inside a transform template.
const (
	PlaceholderMetric = "{metric}"
	PlaceholderHost   = "{host}"
	PlaceholderKey    = "{key}"
)

// BuildTarget turns a metric spec into a Graphite target expression.
//
// A spec is either a bare metric path ("cpu.load") or a metric path and a
// transform template separated by ';' ("cpu.load; movingAverage({metric}, 3)").
// The bare form queries "<host>.<path>". In the template form {metric} becomes
// "<host>.<path>", {host} the host name and {key} the full spec. Anything else
// in the template is passed through untouched.
func BuildTarget(host, metricSpec string) string {
	parts := strings.Split(metricSpec, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) == 1 {
		return host + "." + parts[0]
	}

	metric := host + "." + parts[0]
	r := strings.NewReplacer(
		PlaceholderMetric, metric,
		PlaceholderHost, host,
		PlaceholderKey, metricSpec,
	)
	return r.Replace(parts[1])
}

// BuildQuery returns the full render URL for a host and metric spec.
func (c *Client) BuildQuery(host, metricSpec string) string {
	return c.renderURL(BuildTarget(host, metricSpec))
}

func (c *Client) renderURL(target string) string {
	return fmt.Sprintf("%s/render?from=%s&rawData=true&target=%s&format=json",
		c.baseURL, url.QueryEscape(c.lookback), url.QueryEscape(target))
}
