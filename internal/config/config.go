// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for graphzab.
// It supports deterministic precedence (flags > env > profile > defaults)
// using Viper, and fail-fast validation to prevent silent misconfiguration.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Graphite GraphiteConfig `mapstructure:"graphite"`
	Zabbix   ZabbixConfig   `mapstructure:"zabbix"`
	Sender   SenderConfig   `mapstructure:"sender"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	OTLP     OTLPConfig     `mapstructure:"otlp"`

	// Profile is the name of the profile that was applied, if any.
	Profile string `mapstructure:"-"`
}

// GraphiteConfig holds Graphite render API settings.
type GraphiteConfig struct {
	URL      string        `mapstructure:"url"`      // Graphite web URL
	Lookback string        `mapstructure:"lookback"` // Render "from" value
	Timeout  time.Duration `mapstructure:"timeout"`  // Per-request timeout
	Username string        `mapstructure:"username"` // Basic auth (optional)
	Password string        `mapstructure:"password"` // Basic auth (optional)
}

// ZabbixConfig holds Zabbix frontend API settings.
type ZabbixConfig struct {
	URL      string        `mapstructure:"url"`      // Frontend URL
	Username string        `mapstructure:"username"` // user.login name
	Password string        `mapstructure:"password"` // user.login password
	Token    string        `mapstructure:"token"`    // API token, replaces username/password
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SenderConfig holds Zabbix trapper settings.
type SenderConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ChunkSize int           `mapstructure:"chunk_size"`
}

// SyncConfig holds pipeline settings.
type SyncConfig struct {
	KeyPattern string        `mapstructure:"key_pattern"` // Item key search pattern
	Threads    int           `mapstructure:"threads"`     // Concurrent fetches
	Interval   time.Duration `mapstructure:"interval"`    // 0 runs once
	DryRun     bool          `mapstructure:"dry_run"`     // Skip delivery
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig holds Prometheus Pushgateway settings.
type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway"` // Empty disables pushing
	Job         string `mapstructure:"job"`
}

// OTLPConfig holds OpenTelemetry Protocol settings.
type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Empty disables export
	Insecure bool   `mapstructure:"insecure"` // Use insecure connection
}

// Default configuration values.
const (
	DefaultGraphiteURL      = "http://localhost:8080"
	DefaultLookback         = "-5minutes"
	DefaultGraphiteTimeout  = 30 * time.Second
	DefaultZabbixURL        = "http://localhost/zabbix"
	DefaultZabbixUser       = "Admin"
	DefaultZabbixTimeout    = 30 * time.Second
	DefaultSenderHost       = "localhost"
	DefaultSenderPort       = 10051
	DefaultSenderTimeout    = 10 * time.Second
	DefaultChunkSize        = 250
	DefaultKeyPattern       = "graphite*"
	DefaultThreads          = 50
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultLogMaxSizeMB     = 100
	DefaultLogMaxBackups    = 5
	DefaultMetricsJob       = "graphzab"
)

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > profile > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GRAPHZAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	profileName, err := applyActiveProfile(v, profileFlag(cmd))
	if err != nil {
		return Config{}, err
	}

	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Profile = profileName

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("graphite.url", DefaultGraphiteURL)
	v.SetDefault("graphite.lookback", DefaultLookback)
	v.SetDefault("graphite.timeout", DefaultGraphiteTimeout)
	v.SetDefault("graphite.username", "")
	v.SetDefault("graphite.password", "")

	v.SetDefault("zabbix.url", DefaultZabbixURL)
	v.SetDefault("zabbix.username", DefaultZabbixUser)
	v.SetDefault("zabbix.password", "")
	v.SetDefault("zabbix.token", "")
	v.SetDefault("zabbix.timeout", DefaultZabbixTimeout)

	v.SetDefault("sender.host", DefaultSenderHost)
	v.SetDefault("sender.port", DefaultSenderPort)
	v.SetDefault("sender.timeout", DefaultSenderTimeout)
	v.SetDefault("sender.chunk_size", DefaultChunkSize)

	v.SetDefault("sync.key_pattern", DefaultKeyPattern)
	v.SetDefault("sync.threads", DefaultThreads)
	v.SetDefault("sync.interval", time.Duration(0))
	v.SetDefault("sync.dry_run", false)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)

	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", DefaultMetricsJob)

	v.SetDefault("otlp.endpoint", "")
	v.SetDefault("otlp.insecure", true)
}

// profileFlag returns the --profile value from cmd or its parents.
func profileFlag(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if f := c.Flags().Lookup("profile"); f != nil {
			return f.Value.String()
		}
		if f := c.PersistentFlags().Lookup("profile"); f != nil {
			return f.Value.String()
		}
	}
	return ""
}

// applyActiveProfile layers the selected profile over the defaults.
// An explicitly requested profile that does not exist is an error.
func applyActiveProfile(v *viper.Viper, name string) (string, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return "", fmt.Errorf("load profiles: %w", err)
	}

	if name != "" {
		if _, err := profiles.GetProfile(name); err != nil {
			return "", err
		}
	}
	p, active := profiles.GetActiveProfile(name)
	if p == nil {
		return "", nil
	}

	resolved, err := p.Resolve()
	if err != nil {
		return "", fmt.Errorf("profile %q: %w", active, err)
	}
	applyProfile(v, resolved)
	return active, nil
}

// applyProfile sets non-empty profile values as defaults so env and flags
// still win.
func applyProfile(v *viper.Viper, p Profile) {
	set := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}
	set("graphite.url", p.Graphite.URL)
	set("graphite.username", p.Graphite.Username)
	set("graphite.password", p.Graphite.Password)
	set("zabbix.url", p.Zabbix.URL)
	set("zabbix.username", p.Zabbix.Username)
	set("zabbix.password", p.Zabbix.Password)
	set("zabbix.token", p.Zabbix.Token)
	set("sender.host", p.Sender.Host)
	if p.Sender.Port != 0 {
		v.SetDefault("sender.port", p.Sender.Port)
	}
	set("sync.key_pattern", p.KeyPattern)
	set("otlp.endpoint", p.OTLP.Endpoint)
	if p.OTLP.Insecure != nil {
		v.SetDefault("otlp.insecure", *p.OTLP.Insecure)
	}
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps CLI flag names to nested Viper keys.
var flagToKey = map[string]string{
	"graphite-url":      "graphite.url",
	"lookback":          "graphite.lookback",
	"graphite-timeout":  "graphite.timeout",
	"graphite-user":     "graphite.username",
	"graphite-password": "graphite.password",
	"zabbix-url":        "zabbix.url",
	"zabbix-user":       "zabbix.username",
	"zabbix-password":   "zabbix.password",
	"zabbix-token":      "zabbix.token",
	"zabbix-timeout":    "zabbix.timeout",
	"zabbix-server":     "sender.host",
	"zabbix-port":       "sender.port",
	"sender-timeout":    "sender.timeout",
	"chunk-size":        "sender.chunk_size",
	"key":               "sync.key_pattern",
	"threads":           "sync.threads",
	"interval":          "sync.interval",
	"dry-run":           "sync.dry_run",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"log-file":          "log.file",
	"pushgateway":       "metrics.pushgateway",
	"metrics-job":       "metrics.job",
	"otlp":              "otlp.endpoint",
	"otlp-insecure":     "otlp.insecure",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if err := validateURL("graphite.url", c.Graphite.URL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Graphite.Lookback) == "" {
		return fmt.Errorf("graphite.lookback is required")
	}
	if c.Graphite.Timeout <= 0 {
		return fmt.Errorf("graphite.timeout must be > 0")
	}
	if err := validateURL("zabbix.url", c.Zabbix.URL); err != nil {
		return err
	}
	if c.Zabbix.Timeout <= 0 {
		return fmt.Errorf("zabbix.timeout must be > 0")
	}
	if strings.TrimSpace(c.Sender.Host) == "" {
		return fmt.Errorf("sender.host is required")
	}
	if c.Sender.Port <= 0 || c.Sender.Port > 65535 {
		return fmt.Errorf("sender.port must be between 1 and 65535")
	}
	if c.Sender.Timeout <= 0 {
		return fmt.Errorf("sender.timeout must be > 0")
	}
	if c.Sender.ChunkSize <= 0 {
		return fmt.Errorf("sender.chunk_size must be > 0")
	}
	if strings.TrimSpace(c.Sync.KeyPattern) == "" {
		return fmt.Errorf("sync.key_pattern is required")
	}
	if c.Sync.Threads <= 0 {
		return fmt.Errorf("sync.threads must be > 0")
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("sync.interval must be >= 0")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups must be >= 0")
	}
	if c.Metrics.Pushgateway != "" {
		if err := validateURL("metrics.pushgateway", c.Metrics.Pushgateway); err != nil {
			return err
		}
		if strings.TrimSpace(c.Metrics.Job) == "" {
			return fmt.Errorf("metrics.job is required when metrics.pushgateway is set")
		}
	}
	return nil
}

func validateURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}
