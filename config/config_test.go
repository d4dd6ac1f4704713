package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8089", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.DefaultShots)
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"addr: \":9000\"\nlog_level: debug\ndefault_shots: 512\nworkers: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 512, cfg.DefaultShots)
	assert.Equal(t, 4, cfg.Workers)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o644))

	t.Setenv("QSIM_ADDR", ":7000")
	t.Setenv("QSIM_SEED", "42")
	t.Setenv("QSIM_LOG_PRETTY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.LogPretty)
}

func TestBadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestInvalidShots(t *testing.T) {
	t.Setenv("QSIM_DEFAULT_SHOTS", "-3")
	_, err := Load("")
	assert.Error(t, err)
}
