// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/graphzab/internal/config"
	"github.com/spf13/cobra"
)

// Flags for set-profile command
var (
	setProfileGraphiteURL      string
	setProfileGraphiteUser     string
	setProfileGraphitePassword string
	setProfileZabbixURL        string
	setProfileZabbixUser       string
	setProfileZabbixPassword   string
	setProfileZabbixToken      string
	setProfileServer           string
	setProfilePort             int
	setProfileKeyPattern       string
	setProfileOTLP             string
	setProfileOTLPInsec        bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage graphzab configuration and profiles",
	Long: `Manage graphzab configuration profiles.

Profiles hold the Graphite, Zabbix API and trapper endpoints for one
environment so you can switch between them (similar to kubectl contexts).

Configuration is stored in ~/.config/graphzab/config.yaml`,
	// Profile commands must work even when the active profile is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if _, err := cfg.GetProfile(name); err != nil {
			return fmt.Errorf("profile %q does not exist", name)
		}

		cfg.CurrentProfile = name
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile with connection settings.

Examples:
  # Local development
  graphzab config set-profile local \
    --graphite-url http://localhost:8080 \
    --zabbix-url http://localhost/zabbix

  # Production with an API token kept in the environment
  graphzab config set-profile prod \
    --graphite-url https://graphite.example.com \
    --zabbix-url https://zabbix.example.com \
    --zabbix-token '${ZABBIX_API_TOKEN}' \
    --zabbix-server zabbix-proxy.example.com

Credentials can be stored as:
  - Environment variable references: ${MY_SECRET} (recommended)
  - Plain text values (warning will be shown)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		// Get existing profile or create new one
		profile, _ := cfg.GetProfile(name)
		applyProfileFlags(cmd, &profile)
		cfg.SetProfile(name, profile)

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintln(cmd.ErrOrStderr(), config.PlainTextCredentialWarning())
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved\n", name)
		return nil
	},
}

// applyProfileFlags copies the set-profile flags the user passed onto p.
func applyProfileFlags(cmd *cobra.Command, p *config.Profile) {
	set := func(flag string, dst *string, value string) {
		if cmd.Flags().Changed(flag) {
			*dst = value
		}
	}
	set("graphite-url", &p.Graphite.URL, setProfileGraphiteURL)
	set("graphite-user", &p.Graphite.Username, setProfileGraphiteUser)
	set("graphite-password", &p.Graphite.Password, setProfileGraphitePassword)
	set("zabbix-url", &p.Zabbix.URL, setProfileZabbixURL)
	set("zabbix-user", &p.Zabbix.Username, setProfileZabbixUser)
	set("zabbix-password", &p.Zabbix.Password, setProfileZabbixPassword)
	set("zabbix-token", &p.Zabbix.Token, setProfileZabbixToken)
	set("zabbix-server", &p.Sender.Host, setProfileServer)
	set("key", &p.KeyPattern, setProfileKeyPattern)
	set("otlp", &p.OTLP.Endpoint, setProfileOTLP)
	if cmd.Flags().Changed("zabbix-port") {
		p.Sender.Port = setProfilePort
	}
	if cmd.Flags().Changed("otlp-insecure") {
		insecure := setProfileOTLPInsec
		p.OTLP.Insecure = &insecure
	}
}

var getProfilesCmd = &cobra.Command{
	Use:     "get-profiles",
	Aliases: []string{"list-profiles", "profiles"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		out := cmd.OutOrStdout()
		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Create one with: graphzab config set-profile <name> --graphite-url <url> --zabbix-url <url>")
			return nil
		}

		fmt.Fprintln(out, "PROFILES:")
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			profile, _ := cfg.GetProfile(name)
			fmt.Fprintf(out, "%s%-20s  %s\n", marker, name, formatProfileSummary(profile))
		}

		if cfg.CurrentProfile != "" {
			fmt.Fprintf(out, "\n* = current profile\n")
		}
		return nil
	},
}

var currentProfileCmd = &cobra.Command{
	Use:   "current-profile",
	Short: "Show the current profile name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if cfg.CurrentProfile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No profile selected (using defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentProfile)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted\n", name)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the full configuration (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Fprintln(out, "No configuration found.")
			fmt.Fprintln(out, "Create a profile with: graphzab config set-profile <name> --graphite-url <url> --zabbix-url <url>")
			return nil
		}
		fmt.Fprintln(out, cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	// set-profile flags
	f := setProfileCmd.Flags()
	f.StringVar(&setProfileGraphiteURL, "graphite-url", "", "Graphite web URL")
	f.StringVar(&setProfileGraphiteUser, "graphite-user", "", "Graphite basic auth user")
	f.StringVar(&setProfileGraphitePassword, "graphite-password", "", "Graphite basic auth password (supports ${ENV_VAR} syntax)")
	f.StringVar(&setProfileZabbixURL, "zabbix-url", "", "Zabbix frontend URL")
	f.StringVar(&setProfileZabbixUser, "zabbix-user", "", "Zabbix API user (supports ${ENV_VAR} syntax)")
	f.StringVar(&setProfileZabbixPassword, "zabbix-password", "", "Zabbix API password (supports ${ENV_VAR} syntax)")
	f.StringVar(&setProfileZabbixToken, "zabbix-token", "", "Zabbix API token (supports ${ENV_VAR} syntax)")
	f.StringVar(&setProfileServer, "zabbix-server", "", "Zabbix server or proxy receiving trapper values")
	f.IntVar(&setProfilePort, "zabbix-port", 0, "Zabbix trapper port")
	f.StringVar(&setProfileKeyPattern, "key", "", "Item key search pattern")
	f.StringVar(&setProfileOTLP, "otlp", "", "OTLP endpoint")
	f.BoolVar(&setProfileOTLPInsec, "otlp-insecure", true, "Use insecure OTLP connection")

	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(currentProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// formatProfileSummary returns a brief summary of a profile's settings.
func formatProfileSummary(p config.Profile) string {
	var parts []string
	if p.Graphite.URL != "" {
		parts = append(parts, "graphite="+p.Graphite.URL)
	}
	if p.Zabbix.URL != "" {
		parts = append(parts, "zabbix="+p.Zabbix.URL)
	}
	if p.Sender.Host != "" {
		trapper := p.Sender.Host
		if p.Sender.Port != 0 {
			trapper += ":" + strconv.Itoa(p.Sender.Port)
		}
		parts = append(parts, "trapper="+trapper)
	}
	if p.OTLP.Endpoint != "" {
		parts = append(parts, "otlp="+p.OTLP.Endpoint)
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}
