package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/covrun/internal/application"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".covrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaderExists(t *testing.T) {
	path := writeConfig(t, "version: 1\n")

	exists, err := Loader{}.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = Loader{}.Exists(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoaderLoad(t *testing.T) {
	path := writeConfig(t, `version: 1
features: [plugin, gpu, tpm]
exclude: [aarch64]
artifacts:
  extensions: [gcda, profraw]
report:
  output: coverage/lcov.info
history: .covrun/history.json
`)

	cfg, err := Loader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"plugin", "gpu", "tpm"}, cfg.Features)
	assert.Equal(t, []string{"aarch64"}, cfg.Exclude)
	assert.Equal(t, []string{"gcda", "profraw"}, cfg.Artifacts.Extensions)
	assert.Equal(t, "coverage/lcov.info", cfg.Report.Output)
	assert.Equal(t, ".covrun/history.json", cfg.HistoryPath)
}

func TestLoaderLoadDefaults(t *testing.T) {
	path := writeConfig(t, "version: 1\n")

	cfg, err := Loader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gcda"}, cfg.Artifacts.Extensions)
	assert.Equal(t, "lcov.info", cfg.Report.Output)
	assert.Empty(t, cfg.Features)
	assert.Empty(t, cfg.Exclude)
}

func TestLoaderLoadMalformed(t *testing.T) {
	path := writeConfig(t, "features: {not a list\n")

	_, err := Loader{}.Load(path)
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := application.DefaultConfig()
	cfg.Features = []string{"gpu"}
	cfg.Exclude = []string{"aarch64"}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))

	path := filepath.Join(t.TempDir(), ".covrun.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Loader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
