// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/graphzab/internal/bridge"
	"github.com/elastic/graphzab/internal/config"
	"github.com/elastic/graphzab/internal/logging"
	"github.com/elastic/graphzab/internal/otlp"
	"github.com/elastic/graphzab/internal/telemetry"
	"github.com/elastic/graphzab/internal/zabbix"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the final OTLP flush.
const shutdownTimeout = 5 * time.Second

var (
	syncKeyPattern   string
	syncThreads      int
	syncInterval     time.Duration
	syncDryRun       bool
	syncOutput       string
	syncLookback     string
	syncServer       string
	syncPort         int
	syncChunkSize    int
	syncPushgateway  string
	syncMetricsJob   string
	syncFetchTimeout time.Duration
	syncSendTimeout  time.Duration
	syncOTLPEndpoint string
	syncOTLPInsecure bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push aggregated Graphite values to Zabbix",
	Long: `Discover the Zabbix items matching --key, fetch each item's metric from
Graphite, average the non-null points and send one value per item to the
Zabbix trapper port.

Examples:
  # One run against local services
  graphzab sync

  # Preview what would be sent
  graphzab sync --dry-run --output json

  # Keep running every minute until interrupted
  graphzab sync --interval 1m --pushgateway http://pushgateway:9091`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncKeyPattern, "key", config.DefaultKeyPattern, "Item key search pattern (env: GRAPHZAB_SYNC_KEY_PATTERN)")
	syncCmd.Flags().IntVar(&syncThreads, "threads", config.DefaultThreads, "Concurrent Graphite fetches (env: GRAPHZAB_SYNC_THREADS)")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 0, "Repeat every interval until interrupted; 0 runs once (env: GRAPHZAB_SYNC_INTERVAL)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print the outbound batch instead of sending it (env: GRAPHZAB_SYNC_DRY_RUN)")
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", outputText, "Dry-run output format: text or json")
	syncCmd.Flags().StringVar(&syncLookback, "lookback", config.DefaultLookback, "Graphite render window (env: GRAPHZAB_GRAPHITE_LOOKBACK)")
	syncCmd.Flags().StringVar(&syncServer, "zabbix-server", config.DefaultSenderHost, "Zabbix server or proxy receiving trapper values (env: GRAPHZAB_SENDER_HOST)")
	syncCmd.Flags().IntVar(&syncPort, "zabbix-port", config.DefaultSenderPort, "Zabbix trapper port (env: GRAPHZAB_SENDER_PORT)")
	syncCmd.Flags().IntVar(&syncChunkSize, "chunk-size", config.DefaultChunkSize, "Values per trapper request (env: GRAPHZAB_SENDER_CHUNK_SIZE)")
	syncCmd.Flags().StringVar(&syncPushgateway, "pushgateway", "", "Prometheus Pushgateway URL (env: GRAPHZAB_METRICS_PUSHGATEWAY)")
	syncCmd.Flags().StringVar(&syncMetricsJob, "metrics-job", config.DefaultMetricsJob, "Pushgateway job name (env: GRAPHZAB_METRICS_JOB)")
	syncCmd.Flags().DurationVar(&syncFetchTimeout, "graphite-timeout", config.DefaultGraphiteTimeout, "Per-request Graphite timeout (env: GRAPHZAB_GRAPHITE_TIMEOUT)")
	syncCmd.Flags().DurationVar(&syncSendTimeout, "sender-timeout", config.DefaultSenderTimeout, "Trapper connection timeout (env: GRAPHZAB_SENDER_TIMEOUT)")
	syncCmd.Flags().StringVar(&syncOTLPEndpoint, "otlp", "", "OTLP HTTP endpoint for traces and logs (env: GRAPHZAB_OTLP_ENDPOINT)")
	syncCmd.Flags().BoolVar(&syncOTLPInsecure, "otlp-insecure", true, "Use insecure OTLP connection (env: GRAPHZAB_OTLP_INSECURE)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return fmt.Errorf("configuration not loaded")
	}
	if err := validateOutput(syncOutput); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	password, err := promptZabbixPassword(cfg.Zabbix, os.Stdin, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()
	observers := bridge.Observers{bridge.LogObserver{Logger: logger}, metrics}

	if cfg.OTLP.Endpoint != "" {
		exporter, err := otlp.New(ctx, otlp.Config{
			Endpoint:       cfg.OTLP.Endpoint,
			ServiceVersion: version,
			Insecure:       cfg.OTLP.Insecure,
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := exporter.Close(flushCtx); err != nil {
				logger.Warn("otlp shutdown failed", zap.Error(err))
			}
		}()
		observers = append(observers, exporter)
		logger.Debug("otlp export enabled", zap.String("endpoint", exporter.Endpoint()))
	}

	pipeline := newPipeline(cfg, password, logger, observers)

	run := func(ctx context.Context) error {
		report, err := pipeline.Run(ctx)
		metrics.RecordRun(report, err, time.Now())
		if cfg.Metrics.Pushgateway != "" {
			if perr := metrics.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); perr != nil {
				logger.Warn("push metrics failed", zap.Error(perr))
			}
		}
		if err != nil {
			return err
		}
		if cfg.Sync.DryRun {
			return writeOutbound(cmd.OutOrStdout(), syncOutput, report.Outbound)
		}
		return nil
	}

	if cfg.Sync.Interval == 0 {
		return run(ctx)
	}
	return runEvery(ctx, cfg.Sync.Interval, run, logger)
}

func newPipeline(cfg config.Config, password string, logger *zap.Logger, observer bridge.Observer) *bridge.Pipeline {
	registry := newZabbixClient(cfg, password)
	sender := zabbix.NewSender(zabbix.SenderOptions{
		Host:      cfg.Sender.Host,
		Port:      cfg.Sender.Port,
		Timeout:   cfg.Sender.Timeout,
		ChunkSize: cfg.Sender.ChunkSize,
	})

	return bridge.NewPipeline(
		bridge.NewDiscovery(registry, logger),
		bridge.NewCollector(newGraphiteClient(cfg), bridge.CollectorOptions{
			Threads:  cfg.Sync.Threads,
			Observer: observer,
		}),
		bridge.NewForwarder(sender, logger),
		bridge.PipelineOptions{
			Pattern: cfg.Sync.KeyPattern,
			DryRun:  cfg.Sync.DryRun,
			Logger:  logger,
		},
	)
}

// runEvery calls run immediately and then once per interval until ctx is
// cancelled. Failed runs are logged and do not stop the loop.
func runEvery(ctx context.Context, interval time.Duration, run func(context.Context) error, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("sync failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			logger.Info("stopping", zap.String("reason", context.Cause(ctx).Error()))
			return nil
		case <-ticker.C:
		}
	}
}
