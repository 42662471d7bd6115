// Package config provides configuration types and defaults for toolasset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/toolasset/internal/log"
)

// Config holds all configuration options for toolasset.
type Config struct {
	DBPath  string        `mapstructure:"db_path"`
	Actor   string        `mapstructure:"actor"`
	Codes   CodesConfig   `mapstructure:"codes"`
	Web     WebConfig     `mapstructure:"web"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// CodesConfig controls how public codes are rendered.
type CodesConfig struct {
	Width     int    `mapstructure:"width"`     // zero-padded digits, default 8
	Separator string `mapstructure:"separator"` // between namespace and number, default "_"
}

// WebConfig holds settings for `toolasset serve`.
type WebConfig struct {
	Addr          string        `mapstructure:"addr"`
	LabelCacheTTL time.Duration `mapstructure:"label_cache_ttl"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Path  string `mapstructure:"path"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/toolasset/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Dir returns the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolasset"
	}
	return filepath.Join(home, ".config", "toolasset")
}

// DefaultTracesFilePath returns the default path for trace output.
func DefaultTracesFilePath() string {
	return filepath.Join(Dir(), "traces", "traces.jsonl")
}

// DefaultLogPath returns the default debug log path.
func DefaultLogPath() string {
	return filepath.Join(Dir(), "toolasset.log")
}

// DefaultActor derives the operator name from the environment.
func DefaultActor() string {
	for _, key := range []string{"USERNAME", "USER"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "unknown"
}

// Defaults returns the default configuration values.
func Defaults() Config {
	return Config{
		DBPath: filepath.Join("data", "tool_asset.db"),
		Actor:  DefaultActor(),
		Codes: CodesConfig{
			Width:     8,
			Separator: "_",
		},
		Web: WebConfig{
			Addr:          "127.0.0.1:8080",
			LabelCacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Path: DefaultLogPath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if err := ValidateCodes(c.Codes); err != nil {
		return err
	}
	if err := ValidateWeb(c.Web); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateCodes checks code formatting options.
func ValidateCodes(codes CodesConfig) error {
	if codes.Width < 1 || codes.Width > 18 {
		return fmt.Errorf("codes.width must be between 1 and 18, got %d", codes.Width)
	}
	if strings.ContainsAny(codes.Separator, " \t\n") {
		return fmt.Errorf("codes.separator must not contain whitespace, got %q", codes.Separator)
	}
	return nil
}

// ValidateWeb checks the web server options.
func ValidateWeb(web WebConfig) error {
	if strings.TrimSpace(web.Addr) == "" {
		return fmt.Errorf("web.addr must not be empty")
	}
	if web.LabelCacheTTL < 0 {
		return fmt.Errorf("web.label_cache_ttl must not be negative, got %s", web.LabelCacheTTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# toolasset configuration

# SQLite database file (created and migrated on first use)
db_path: data/tool_asset.db

# Name recorded on every operation log entry (default: $USERNAME / $USER)
# actor: yamada

# Public code format: <NAMESPACE><separator><zero-padded number>
codes:
  width: 8
  separator: "_"

# Web front end (toolasset serve)
web:
  addr: 127.0.0.1:8080
  label_cache_ttl: 10m   # how long dictionary labels are cached

# Debug logging (also enabled by --debug or TOOLASSET_DEBUG=1)
log:
  debug: false
  # path: ~/.config/toolasset/toolasset.log

# Tracing of service operations
tracing:
  enabled: false
  exporter: file          # "none", "file", "stdout", or "otlp"
  # file_path: ~/.config/toolasset/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
