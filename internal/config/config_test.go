package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, filepath.Join("data", "tool_asset.db"), cfg.DBPath)
	require.Equal(t, 8, cfg.Codes.Width)
	require.Equal(t, "_", cfg.Codes.Separator)
	require.Equal(t, "127.0.0.1:8080", cfg.Web.Addr)
	require.Equal(t, 10*time.Minute, cfg.Web.LabelCacheTTL)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.NoError(t, cfg.Validate())
}

func TestDefaultActor(t *testing.T) {
	t.Setenv("USERNAME", "")
	t.Setenv("USER", "suzuki")
	require.Equal(t, "suzuki", DefaultActor())

	t.Setenv("USERNAME", "tanaka")
	require.Equal(t, "tanaka", DefaultActor())

	t.Setenv("USERNAME", "")
	t.Setenv("USER", "")
	require.Equal(t, "unknown", DefaultActor())
}

func TestValidateCodes(t *testing.T) {
	require.NoError(t, ValidateCodes(CodesConfig{Width: 6, Separator: "-"}))
	require.NoError(t, ValidateCodes(CodesConfig{Width: 8, Separator: ""}))
	require.Error(t, ValidateCodes(CodesConfig{Width: 0, Separator: "_"}))
	require.Error(t, ValidateCodes(CodesConfig{Width: 19, Separator: "_"}))
	require.Error(t, ValidateCodes(CodesConfig{Width: 8, Separator: " "}))
}

func TestValidateWeb(t *testing.T) {
	require.NoError(t, ValidateWeb(WebConfig{Addr: ":8080"}))
	require.Error(t, ValidateWeb(WebConfig{Addr: " "}))
	require.Error(t, ValidateWeb(WebConfig{Addr: ":8080", LabelCacheTTL: -time.Second}))
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr string
	}{
		{name: "defaults", cfg: Defaults().Tracing},
		{name: "sample rate too high", cfg: TracingConfig{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "negative sample rate", cfg: TracingConfig{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "bad exporter", cfg: TracingConfig{Exporter: "jaeger", SampleRate: 1}, wantErr: "exporter"},
		{name: "file without path", cfg: TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1}, wantErr: "file_path"},
		{name: "otlp without endpoint", cfg: TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}, wantErr: "otlp_endpoint"},
		{name: "disabled file without path", cfg: TracingConfig{Exporter: "file", SampleRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWriteDefaultConfig_LoadsWithViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".toolasset", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, "data/tool_asset.db", cfg.DBPath)
	require.Equal(t, 10*time.Minute, cfg.Web.LabelCacheTTL)
	require.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
	require.NoError(t, cfg.Validate())
}
