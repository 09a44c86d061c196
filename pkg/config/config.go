// SPDX-License-Identifier: Apache-2.0

// Package config loads gedboard settings from defaults, YAML files,
// GEDBOARD_* environment variables and command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys.
const EnvPrefix = "GEDBOARD_"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Data      DataConfig      `koanf:"data"`
	CSV       CSVConfig       `koanf:"csv"`
	Columns   ColumnsConfig   `koanf:"columns"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Web       WebConfig       `koanf:"web"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// DataConfig locates the CSV exports.
type DataConfig struct {
	Dir      string `koanf:"dir"`
	Pattern  string `koanf:"pattern"`  // doublestar glob relative to Dir
	Manifest string `koanf:"manifest"` // optional projects.yaml
	Watch    bool   `koanf:"watch"`
	Debounce string `koanf:"debounce"`
}

// DebounceDuration parses Debounce, falling back to 500ms.
func (d DataConfig) DebounceDuration() time.Duration {
	if v, err := time.ParseDuration(d.Debounce); err == nil && v > 0 {
		return v
	}
	return 500 * time.Millisecond
}

type CSVConfig struct {
	Separator  string `koanf:"separator"`
	Encoding   string `koanf:"encoding"`
	DateLayout string `koanf:"date_layout"`
}

// ColumnsConfig maps record fields to CSV header names.
type ColumnsConfig struct {
	Date         string `koanf:"date"`
	DocumentType string `koanf:"document_type"`
	Project      string `koanf:"project"`
	Issuer       string `koanf:"issuer"`
	Lot          string `koanf:"lot"`
	Index        string `koanf:"index"`
	Label        string `koanf:"label"`
	AddedBy      string `koanf:"added_by"`
}

type AlertsConfig struct {
	WatchMin      int     `koanf:"watch_min"`
	CriticalAbove int     `koanf:"critical_above"`
	ShareOKMin    float64 `koanf:"share_ok_min"`
	TopN          int     `koanf:"top_n"`
}

type AnalysisConfig struct {
	Clusters      int     `koanf:"clusters"`
	Contamination float64 `koanf:"contamination"`
}

type WebConfig struct {
	Addr string `koanf:"addr"`
}

var defaults = map[string]any{
	"log.level":               "info",
	"log.format":              "text",
	"telemetry.exporter":      "none",
	"telemetry.otlp_endpoint": "",
	"telemetry.otlp_insecure": false,
	"data.dir":                ".",
	"data.pattern":            "**/*.csv",
	"data.manifest":           "",
	"data.watch":              false,
	"data.debounce":           "500ms",
	"csv.separator":           ";",
	"csv.encoding":            "iso-8859-1",
	"csv.date_layout":         "2/1/2006",
	"columns.date":            "Date dépôt GED",
	"columns.document_type":   "TYPE DE DOCUMENT",
	"columns.project":         "PROJET",
	"columns.issuer":          "EMET",
	"columns.lot":             "LOT",
	"columns.index":           "INDICE",
	"columns.label":           "Libellé du document",
	"columns.added_by":        "Ajouté par",
	"alerts.watch_min":        3,
	"alerts.critical_above":   6,
	"alerts.share_ok_min":     80.0,
	"alerts.top_n":            2,
	"analysis.clusters":       3,
	"analysis.contamination":  0.05,
	"web.addr":                ":8088",
}

// Load reads defaults, the optional YAML file at path and the environment.
func Load(path string) (*Config, error) {
	return load(path, "", nil)
}

// LoadWithProfile loads path and then, if present, the profile file next to it
// (config.yaml + "dev" -> config.dev.yaml).
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profile, nil)
}

// LoadWithCLI parses --config, --profile/--env and --set key=value arguments.
// CLI overrides win over file and environment values.
func LoadWithCLI(args []string) (*Config, error) {
	opts, overrides, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	return load(opts.path, opts.profile, overrides)
}

func load(path, profile string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if profile != "" {
			profilePath := ProfilePath(path, profile)
			if _, err := os.Stat(profilePath); err == nil {
				if err := k.Load(file.Provider(profilePath), yaml.Parser()); err != nil {
					return nil, fmt.Errorf("load profile %s: %w", profilePath, err)
				}
			}
		}
	}

	// GEDBOARD_ALERTS_WATCH_MIN -> alerts.watch_min; unknown variables are ignored.
	known := envKeys()
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return known[s]
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ProfilePath returns the profile variant of a config path.
func ProfilePath(path, profile string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + profile + ext
}

func envKeys() map[string]string {
	out := make(map[string]string, len(defaults))
	for key := range defaults {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		out[name] = key
	}
	return out
}

type cliOptions struct {
	path    string
	profile string
}

func parseCLIOverrides(args []string) (cliOptions, map[string]any, error) {
	var opts cliOptions
	overrides := make(map[string]any)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--profile", "--env", "--set":
		default:
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("missing value for %s", name)
			}
			value = args[i+1]
			i++
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile", "--env":
			opts.profile = value
		case "--set":
			key, raw, ok := strings.Cut(value, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return opts, nil, fmt.Errorf("invalid --set value %q, expected key=value", value)
			}
			overrides[strings.TrimSpace(key)] = parseOverrideValue(raw)
		}
	}
	return opts, overrides, nil
}

func parseOverrideValue(raw string) any {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return decoded
	}
	return raw
}

// Validate checks the settings that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if len([]rune(c.CSV.Separator)) != 1 {
		return fmt.Errorf("csv.separator must be a single character, got %q", c.CSV.Separator)
	}
	switch strings.ToLower(c.CSV.Encoding) {
	case "iso-8859-1", "latin1", "utf-8", "utf8", "windows-1252", "cp1252":
	default:
		return fmt.Errorf("unsupported csv.encoding %q", c.CSV.Encoding)
	}
	if c.CSV.DateLayout == "" {
		return fmt.Errorf("csv.date_layout is required")
	}
	if c.Columns.Date == "" || c.Columns.DocumentType == "" || c.Columns.Lot == "" || c.Columns.Index == "" {
		return fmt.Errorf("columns.date, columns.document_type, columns.lot and columns.index are required")
	}
	if c.Alerts.WatchMin < 0 || c.Alerts.CriticalAbove < c.Alerts.WatchMin {
		return fmt.Errorf("alerts thresholds must satisfy 0 <= watch_min <= critical_above")
	}
	if c.Alerts.ShareOKMin < 0 || c.Alerts.ShareOKMin > 100 {
		return fmt.Errorf("alerts.share_ok_min must be between 0 and 100")
	}
	if c.Alerts.TopN < 1 {
		return fmt.Errorf("alerts.top_n must be at least 1")
	}
	if c.Analysis.Clusters < 1 {
		return fmt.Errorf("analysis.clusters must be at least 1")
	}
	if c.Analysis.Contamination <= 0 || c.Analysis.Contamination > 0.5 {
		return fmt.Errorf("analysis.contamination must be in (0, 0.5], got %v", c.Analysis.Contamination)
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout":
	case "otlp":
		if c.Telemetry.OTLPEndpoint == "" {
			return fmt.Errorf("telemetry.otlp_endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("unknown telemetry.exporter %q", c.Telemetry.Exporter)
	}
	return nil
}
