// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/elastic/graphzab/internal/config"
	"github.com/spf13/cobra"
)

// Global flags shared across commands.
// Values are bound via Viper; variables keep Cobra compatibility.
var (
	profileFlag      string
	graphiteURL      string
	graphiteUser     string
	graphitePassword string
	zabbixURL        string
	zabbixUser       string
	zabbixPassword   string
	zabbixToken      string
	zabbixTimeout    time.Duration
	logLevel         string
	logFormat        string
	logFile          string
)

var rootCmd = &cobra.Command{
	Use:   "graphzab",
	Short: "Copy Graphite metrics into Zabbix trapper items",
	Long: `graphzab - Feed Zabbix trapper items from Graphite.

Items whose key matches a pattern (default graphite*) carry a Graphite metric
in their key parameters, e.g. graphite[cpu.load] or
graphite[cpu.load;movingAverage({metric},5)]. Each run fetches the recent raw
window for every item, averages the non-null points and pushes one value per
item to the Zabbix trapper port.

Run once with 'graphzab sync', or keep running with 'graphzab sync --interval 1m'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	// Global flags (Viper precedence: flags > env > profile > defaults)
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Configuration profile to use (default: current-profile)")
	rootCmd.PersistentFlags().StringVar(&graphiteURL, "graphite-url", config.DefaultGraphiteURL, "Graphite web URL (env: GRAPHZAB_GRAPHITE_URL)")
	rootCmd.PersistentFlags().StringVar(&zabbixURL, "zabbix-url", config.DefaultZabbixURL, "Zabbix frontend URL (env: GRAPHZAB_ZABBIX_URL)")
	rootCmd.PersistentFlags().StringVar(&graphiteUser, "graphite-user", "", "Graphite basic auth user (env: GRAPHZAB_GRAPHITE_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&graphitePassword, "graphite-password", "", "Graphite basic auth password (env: GRAPHZAB_GRAPHITE_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&zabbixUser, "zabbix-user", config.DefaultZabbixUser, "Zabbix API user (env: GRAPHZAB_ZABBIX_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&zabbixPassword, "zabbix-password", "", "Zabbix API password, prompted for when empty on a terminal (env: GRAPHZAB_ZABBIX_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&zabbixToken, "zabbix-token", "", "Zabbix API token, replaces user and password (env: GRAPHZAB_ZABBIX_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&zabbixTimeout, "zabbix-timeout", config.DefaultZabbixTimeout, "Zabbix API request timeout (env: GRAPHZAB_ZABBIX_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error (env: GRAPHZAB_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "Log format: console or json (env: GRAPHZAB_LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotated file (env: GRAPHZAB_LOG_FILE)")
}
