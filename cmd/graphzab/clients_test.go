// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/elastic/graphzab/internal/config"
)

func TestNeedsPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.ZabbixConfig
		want bool
	}{
		{name: "user without password", cfg: config.ZabbixConfig{Username: "Admin"}, want: true},
		{name: "password set", cfg: config.ZabbixConfig{Username: "Admin", Password: "zabbix"}, want: false},
		{name: "token set", cfg: config.ZabbixConfig{Username: "Admin", Token: "tok"}, want: false},
		{name: "no user", cfg: config.ZabbixConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := needsPassword(tt.cfg); got != tt.want {
				t.Errorf("needsPassword(%+v) = %v, want %v", tt.cfg, got, tt.want)
			}
		})
	}
}

func TestPromptZabbixPassword_NonTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var out bytes.Buffer
	got, err := promptZabbixPassword(config.ZabbixConfig{Username: "Admin"}, f, &out)
	if err != nil {
		t.Fatalf("promptZabbixPassword: %v", err)
	}
	if got != "" {
		t.Errorf("password = %q, want empty", got)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected prompt %q on a non-terminal", out.String())
	}

	got, err = promptZabbixPassword(config.ZabbixConfig{Username: "Admin", Password: "zabbix"}, f, &out)
	if err != nil || got != "zabbix" {
		t.Errorf("promptZabbixPassword = %q, %v; want configured password", got, err)
	}
}
