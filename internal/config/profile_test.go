// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfileConfig_GetProfile(t *testing.T) {
	cfg := &ProfileConfig{
		Profiles: map[string]Profile{
			"test": {Graphite: GraphiteProfile{URL: "http://graphite:8080"}},
		},
	}

	p, err := cfg.GetProfile("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Graphite.URL != "http://graphite:8080" {
		t.Errorf("URL = %q, want %q", p.Graphite.URL, "http://graphite:8080")
	}

	if _, err = cfg.GetProfile("nonexistent"); err == nil {
		t.Error("expected error for non-existent profile")
	}
	if _, err = (&ProfileConfig{}).GetProfile("any"); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestProfileConfig_SetProfile(t *testing.T) {
	cfg := &ProfileConfig{}

	cfg.SetProfile("new", Profile{
		Graphite: GraphiteProfile{URL: "http://new:8080"},
		Zabbix:   ZabbixProfile{URL: "http://new/zabbix"},
		Sender:   SenderProfile{Host: "new", Port: 10051},
		OTLP:     OTLPProfile{Endpoint: "new:4318"},
	})

	p, err := cfg.GetProfile("new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Graphite.URL != "http://new:8080" {
		t.Errorf("Graphite URL = %q", p.Graphite.URL)
	}
	if p.Zabbix.URL != "http://new/zabbix" {
		t.Errorf("Zabbix URL = %q", p.Zabbix.URL)
	}
	if p.Sender.Host != "new" || p.Sender.Port != 10051 {
		t.Errorf("Sender = %+v", p.Sender)
	}
	if p.OTLP.Endpoint != "new:4318" {
		t.Errorf("OTLP Endpoint = %q", p.OTLP.Endpoint)
	}
}

func TestProfileConfig_DeleteProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test":  {Zabbix: ZabbixProfile{URL: "http://test/zabbix"}},
			"other": {Zabbix: ZabbixProfile{URL: "http://other/zabbix"}},
		},
	}

	if err := cfg.DeleteProfile("test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cfg.GetProfile("test"); err == nil {
		t.Error("expected error after delete")
	}
	if cfg.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q, want empty", cfg.CurrentProfile)
	}
	if err := cfg.DeleteProfile("nonexistent"); err == nil {
		t.Error("expected error for non-existent profile")
	}
}

func TestProfileConfig_ListProfiles(t *testing.T) {
	cfg := &ProfileConfig{
		Profiles: map[string]Profile{"c": {}, "a": {}, "b": {}},
	}

	names := cfg.ListProfiles()
	if strings.Join(names, ",") != "a,b,c" {
		t.Errorf("ListProfiles() = %v, want [a b c]", names)
	}
}

func TestProfileConfig_GetActiveProfile(t *testing.T) {
	cfg := &ProfileConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default":  {Graphite: GraphiteProfile{URL: "http://default:8080"}},
			"override": {Graphite: GraphiteProfile{URL: "http://override:8080"}},
		},
	}

	p, name := cfg.GetActiveProfile("override")
	if name != "override" || p == nil || p.Graphite.URL != "http://override:8080" {
		t.Errorf("flag override: got %q %+v", name, p)
	}

	p, name = cfg.GetActiveProfile("")
	if name != "default" || p == nil || p.Graphite.URL != "http://default:8080" {
		t.Errorf("current profile: got %q %+v", name, p)
	}

	cfg.CurrentProfile = ""
	p, name = cfg.GetActiveProfile("")
	if name != "" || p != nil {
		t.Errorf("no profile: got %q %+v", name, p)
	}
}

func TestIsEnvRef(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"${MY_VAR}", true},
		{"${ZABBIX_TOKEN}", true},
		{"${}", false},
		{"$MY_VAR", false},
		{"MY_VAR", false},
		{"${MY_VAR", false},
		{"MY_VAR}", false},
		{"plain text", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsEnvRef(tt.input); got != tt.want {
				t.Errorf("IsEnvRef(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfile_Resolve(t *testing.T) {
	t.Setenv("TEST_TOKEN", "secret-token")
	t.Setenv("TEST_USER", "testuser")
	t.Setenv("TEST_PASS", "testpass")

	profile := Profile{
		Graphite: GraphiteProfile{Password: "${TEST_PASS}"},
		Zabbix: ZabbixProfile{
			URL:      "http://test/zabbix",
			Token:    "${TEST_TOKEN}",
			Username: "${TEST_USER}",
			Password: "literal",
		},
	}

	resolved, err := profile.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Zabbix.Token != "secret-token" {
		t.Errorf("Token = %q, want %q", resolved.Zabbix.Token, "secret-token")
	}
	if resolved.Zabbix.Username != "testuser" {
		t.Errorf("Username = %q, want %q", resolved.Zabbix.Username, "testuser")
	}
	if resolved.Zabbix.Password != "literal" {
		t.Errorf("Password = %q, want literal", resolved.Zabbix.Password)
	}
	if resolved.Graphite.Password != "testpass" {
		t.Errorf("Graphite password = %q, want %q", resolved.Graphite.Password, "testpass")
	}
	if profile.Zabbix.Token != "${TEST_TOKEN}" {
		t.Errorf("Resolve mutated the receiver: %q", profile.Zabbix.Token)
	}

	profile.Zabbix.Token = "${UNDEFINED_GRAPHZAB_VAR}"
	if _, err = profile.Resolve(); err == nil || !strings.Contains(err.Error(), "zabbix.token") {
		t.Errorf("expected undefined variable error naming zabbix.token, got %v", err)
	}
}

func TestProfile_HasCredentials(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"no credentials", Profile{Zabbix: ZabbixProfile{URL: "http://z"}}, false},
		{"token", Profile{Zabbix: ZabbixProfile{Token: "t"}}, true},
		{"username", Profile{Zabbix: ZabbixProfile{Username: "u"}}, true},
		{"graphite password", Profile{Graphite: GraphiteProfile{Password: "p"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.HasCredentials(); got != tt.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfile_HasPlainTextCredentials(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"no credentials", Profile{}, false},
		{"env var token", Profile{Zabbix: ZabbixProfile{Token: "${MY_TOKEN}"}}, false},
		{"plain text token", Profile{Zabbix: ZabbixProfile{Token: "plain"}}, true},
		{"plain text password", Profile{Zabbix: ZabbixProfile{Password: "secret"}}, true},
		{"mixed env and plain", Profile{Zabbix: ZabbixProfile{Token: "${T}", Password: "plain"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.HasPlainTextCredentials(); got != tt.want {
				t.Errorf("HasPlainTextCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfile_MaskCredentials(t *testing.T) {
	profile := Profile{
		Zabbix: ZabbixProfile{
			URL:      "http://test/zabbix",
			Token:    "secret-token",
			Username: "user",
			Password: "${ENV_PASS}",
		},
	}

	masked := profile.MaskCredentials()

	if masked.Zabbix.URL != "http://test/zabbix" {
		t.Errorf("URL = %q, want unchanged", masked.Zabbix.URL)
	}
	if masked.Zabbix.Token != "****" {
		t.Errorf("Token = %q, want ****", masked.Zabbix.Token)
	}
	if masked.Zabbix.Username != "****" {
		t.Errorf("Username = %q, want ****", masked.Zabbix.Username)
	}
	if masked.Zabbix.Password != "${ENV_PASS}" {
		t.Errorf("Password = %q, want ${ENV_PASS}", masked.Zabbix.Password)
	}
	if profile.Zabbix.Token != "secret-token" {
		t.Errorf("MaskCredentials mutated the receiver")
	}
}

func TestProfileConfig_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	insecure := false
	cfg := &ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				Graphite: GraphiteProfile{URL: "http://test:8080"},
				Zabbix:   ZabbixProfile{URL: "http://test/zabbix", Token: "${TEST_TOKEN}"},
				OTLP:     OTLPProfile{Endpoint: "test:4318", Insecure: &insecure},
			},
		},
	}

	if err := SaveProfiles(cfg); err != nil {
		t.Fatalf("SaveProfiles error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %04o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles error: %v", err)
	}
	if loaded.CurrentProfile != "test" {
		t.Errorf("CurrentProfile = %q, want %q", loaded.CurrentProfile, "test")
	}

	p, err := loaded.GetProfile("test")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.Zabbix.Token != "${TEST_TOKEN}" {
		t.Errorf("Token = %q, want %q", p.Zabbix.Token, "${TEST_TOKEN}")
	}
	if p.OTLP.Insecure == nil || *p.OTLP.Insecure {
		t.Errorf("OTLP.Insecure = %v, want explicit false", p.OTLP.Insecure)
	}
}

func TestLoadProfiles_NonExistent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadProfiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || len(cfg.Profiles) != 0 {
		t.Errorf("expected empty profiles, got %+v", cfg)
	}
}

func TestLoadProfiles_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	dir := filepath.Join(tempDir, ConfigDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("profiles: [oops"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfiles(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetConfigPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(tempDir, "graphzab", "config.yaml")
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}
}

func TestProfileConfig_String(t *testing.T) {
	cfg := ProfileConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				Zabbix: ZabbixProfile{URL: "http://test/zabbix", Password: "hunter2"},
			},
		},
	}

	str := cfg.String()
	if !strings.Contains(str, "http://test/zabbix") {
		t.Error("expected URL in output")
	}
	if strings.Contains(str, "hunter2") {
		t.Error("password should be masked")
	}
	if !strings.Contains(str, "****") {
		t.Error("expected masked credentials")
	}
}
