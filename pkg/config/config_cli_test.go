// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithCLIOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := []byte("csv:\n  encoding: utf-8\nalerts:\n  watch_min: 2\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GEDBOARD_ALERTS_WATCH_MIN", "5")

	cfg, err := LoadWithCLI([]string{
		"--config", path,
		"--set", "alerts.critical_above=9",
		"--set=data.watch=true",
		"--set", "web.addr=:7000",
		"--log-level", "debug",
	})
	if err != nil {
		t.Fatalf("LoadWithCLI failed: %v", err)
	}
	if cfg.CSV.Encoding != "utf-8" {
		t.Fatalf("expected file encoding, got %s", cfg.CSV.Encoding)
	}
	if cfg.Alerts.WatchMin != 5 {
		t.Fatalf("expected env to override file, got %d", cfg.Alerts.WatchMin)
	}
	if cfg.Alerts.CriticalAbove != 9 {
		t.Fatalf("expected cli override critical_above, got %d", cfg.Alerts.CriticalAbove)
	}
	if !cfg.Data.Watch {
		t.Fatalf("expected data.watch=true")
	}
	if cfg.Web.Addr != ":7000" {
		t.Fatalf("expected web addr override, got %s", cfg.Web.Addr)
	}
}

func TestLoadWithCLIProfile(t *testing.T) {
	tmpDir := t.TempDir()
	basePath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(basePath, []byte("log:\n  format: text\n"), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "config.dev.yaml"), []byte("log:\n  format: json\n"), 0o644); err != nil {
		t.Fatalf("write dev: %v", err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{name: "profile flag", args: []string{"--config", basePath, "--profile", "dev"}},
		{name: "env alias", args: []string{"--config", basePath, "--env", "dev"}},
		{name: "equals form", args: []string{"--config=" + basePath, "--profile=dev"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadWithCLI(tc.args)
			if err != nil {
				t.Fatalf("LoadWithCLI failed: %v", err)
			}
			if cfg.Log.Format != "json" {
				t.Errorf("format: got %s, want json", cfg.Log.Format)
			}
		})
	}
}

func TestParseCLIOverridesErrors(t *testing.T) {
	if _, _, err := parseCLIOverrides([]string{"--config"}); err == nil {
		t.Fatalf("expected error for missing --config value")
	}
	if _, _, err := parseCLIOverrides([]string{"--set"}); err == nil {
		t.Fatalf("expected error for missing --set value")
	}
	if _, _, err := parseCLIOverrides([]string{"--set", "invalid"}); err == nil {
		t.Fatalf("expected error for invalid --set value")
	}
}

func TestParseOverrideValue(t *testing.T) {
	if v, ok := parseOverrideValue("true").(bool); !ok || !v {
		t.Errorf("expected bool true")
	}
	if v, ok := parseOverrideValue("12").(float64); !ok || v != 12 {
		t.Errorf("expected number 12")
	}
	if v, ok := parseOverrideValue(":8080").(string); !ok || v != ":8080" {
		t.Errorf("expected raw string")
	}
}

func TestLoadWithCLIZeroContamination(t *testing.T) {
	cfg, err := LoadWithCLI([]string{"--set", "analysis.contamination=0"})
	if err != nil {
		t.Fatalf("LoadWithCLI failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("contamination 0 would make every anomaly detection fail; Validate must reject it")
	}
}
