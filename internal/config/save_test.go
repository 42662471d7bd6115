package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestSaveValue_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveValue(path, "web.addr", "0.0.0.0:9000"))
	require.NoError(t, SaveValue(path, "log.debug", "true"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# toolasset configuration")
	require.Contains(t, content, "how long dictionary labels are cached")
	require.Contains(t, content, "0.0.0.0:9000")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "0.0.0.0:9000", v.GetString("web.addr"))
	require.True(t, v.GetBool("log.debug"))
	require.Equal(t, 8, v.GetInt("codes.width"))
}

func TestSaveValue_CreatesFileAndSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveValue(path, "tracing.exporter", "stdout"))
	require.NoError(t, SaveValue(path, "actor", "yamada"))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "stdout", v.GetString("tracing.exporter"))
	require.Equal(t, "yamada", v.GetString("actor"))
}

func TestSaveValue_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveValue(path, "web.port", "80")
	require.ErrorContains(t, err, "unknown config key")
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSaveValue_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.Error(t, SaveValue(path, "actor", "x"))
}
