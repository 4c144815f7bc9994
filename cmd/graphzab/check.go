// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/graphzab/internal/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check Graphite and Zabbix API connectivity",
	Long: `Check that the Graphite render API answers and report the Zabbix API
version. Exits non-zero if either endpoint is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := config.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("configuration not loaded")
		}
		return runCheck(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runCheck needs no Zabbix login: apiinfo.version is unauthenticated.
func runCheck(ctx context.Context, w io.Writer, cfg config.Config) error {
	var errs []error

	if cfg.Profile != "" {
		fmt.Fprintf(w, "profile   %s\n", cfg.Profile)
	}

	gc := newGraphiteClient(cfg)
	if err := gc.Ping(ctx); err != nil {
		fmt.Fprintf(w, "graphite  %s  error: %v\n", gc.BaseURL(), err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(w, "graphite  %s  ok\n", gc.BaseURL())
	}

	zc := newZabbixClient(cfg, cfg.Zabbix.Password)
	v, err := zc.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "zabbix    %s  error: %v\n", cfg.Zabbix.URL, err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(w, "zabbix    %s  ok (api %s)\n", cfg.Zabbix.URL, v)
	}

	if len(errs) > 0 {
		return fmt.Errorf("check failed: %w", errors.Join(errs...))
	}
	return nil
}
