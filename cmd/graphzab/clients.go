// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/elastic/graphzab/internal/config"
	"github.com/elastic/graphzab/internal/graphite"
	"github.com/elastic/graphzab/internal/zabbix"
	"golang.org/x/term"
)

func newGraphiteClient(cfg config.Config) *graphite.Client {
	return graphite.NewClient(graphite.ClientOptions{
		BaseURL:  cfg.Graphite.URL,
		Lookback: cfg.Graphite.Lookback,
		Username: cfg.Graphite.Username,
		Password: cfg.Graphite.Password,
		Timeout:  cfg.Graphite.Timeout,
	})
}

func newZabbixClient(cfg config.Config, password string) *zabbix.Client {
	return zabbix.NewClient(zabbix.ClientOptions{
		URL:      cfg.Zabbix.URL,
		Username: cfg.Zabbix.Username,
		Password: password,
		Token:    cfg.Zabbix.Token,
		Timeout:  cfg.Zabbix.Timeout,
	})
}

// needsPassword reports whether user.login will run without a password.
func needsPassword(cfg config.ZabbixConfig) bool {
	return cfg.Token == "" && cfg.Password == "" && cfg.Username != ""
}

// promptZabbixPassword returns the configured password, prompting on in when it
// is missing and in is a terminal.
func promptZabbixPassword(cfg config.ZabbixConfig, in *os.File, out io.Writer) (string, error) {
	if !needsPassword(cfg) {
		return cfg.Password, nil
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprintf(out, "Zabbix password for %s: ", cfg.Username)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
