// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package graphite

import (
	"net/url"
	"testing"
)

func TestBuildTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		spec string
		want string
	}{
		{name: "bare metric", host: "web1", spec: "cpu.load", want: "web1.cpu.load"},
		{name: "bare metric trimmed", host: "web1", spec: "  cpu.load ", want: "web1.cpu.load"},
		{name: "transform", host: "web2", spec: "cpu.load; avg({metric})", want: "avg(web2.cpu.load)"},
		{name: "transform no spaces", host: "db", spec: "disk.used;sumSeries({metric})", want: "sumSeries(db.disk.used)"},
		{name: "host placeholder", host: "db", spec: "x; alias({metric}, '{host}')", want: "alias(db.x, 'db')"},
		{name: "key placeholder", host: "db", spec: "x; alias({metric}, '{key}')", want: "alias(db.x, 'x; alias({metric}, '{key}')')"},
		{name: "extra parts ignored", host: "h", spec: "m; f({metric}); junk", want: "f(h.m)"},
		{name: "template without placeholder", host: "h", spec: "m; constantLine(1)", want: "constantLine(1)"},
		{name: "unknown placeholder kept", host: "h", spec: "m; f({metric}, {other})", want: "f(h.m, {other})"},
		{name: "repeated placeholder", host: "h", spec: "m; diffSeries({metric}, {metric})", want: "diffSeries(h.m, h.m)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildTarget(tt.host, tt.spec); got != tt.want {
				t.Errorf("BuildTarget(%q, %q) = %q, want %q", tt.host, tt.spec, got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientOptions{BaseURL: "http://graphite:8080/"})
	q := c.BuildQuery("web2", "cpu.load; avg({metric})")

	u, err := url.Parse(q)
	if err != nil {
		t.Fatalf("query is not a URL: %v", err)
	}
	if u.Scheme != "http" || u.Host != "graphite:8080" || u.Path != "/render" {
		t.Errorf("unexpected URL base: %s", q)
	}

	values := u.Query()
	checks := map[string]string{
		"from":    "-5minutes",
		"rawData": "true",
		"format":  "json",
		"target":  "avg(web2.cpu.load)",
	}
	for k, want := range checks {
		if got := values.Get(k); got != want {
			t.Errorf("query param %s = %q, want %q", k, got, want)
		}
	}
}

func TestBuildQuery_CustomLookback(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientOptions{BaseURL: "http://graphite", Lookback: "-15minutes"})
	want := "http://graphite/render?from=-15minutes&rawData=true&target=web1.cpu.load&format=json"
	if got := c.BuildQuery("web1", "cpu.load"); got != want {
		t.Errorf("BuildQuery = %q, want %q", got, want)
	}
}
