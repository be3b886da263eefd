package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.SeedData())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	data := `backend: memory
actingUser: 2
seed: false
latency: true
debounce: 250ms
timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lendit.yml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, int64(2), cfg.ActingUser)
	assert.False(t, cfg.SeedData())
	assert.True(t, cfg.Latency)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL, "unset keys keep their defaults")
}

func TestLoad_YAMLAlternateExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lendit.yaml"), []byte("baseURL: http://api:9000\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://api:9000", cfg.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lendit.yml"), []byte("backend: [unterminated"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"LENDIT_BACKEND":   "KUZU",
		"LENDIT_USER":      "3",
		"LENDIT_SEED":      "false",
		"LENDIT_LATENCY":   "1",
		"LENDIT_DEBOUNCE":  "1s",
		"LENDIT_KUZU_PATH": "/tmp/catalog.kuzu",
		"LENDIT_LISTEN":    ":9090",
	})

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, BackendKuzu, cfg.Backend)
	assert.Equal(t, int64(3), cfg.ActingUser)
	assert.False(t, cfg.SeedData())
	assert.True(t, cfg.Latency)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, "/tmp/catalog.kuzu", cfg.KuzuPath)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestApplyEnv_UnsetKeepsLoadedValues(t *testing.T) {
	off := false
	cfg := Default()
	cfg.Seed = &off
	cfg.BaseURL = "http://api:9000"

	require.NoError(t, cfg.ApplyEnv())
	assert.False(t, cfg.SeedData())
	assert.Equal(t, "http://api:9000", cfg.BaseURL)

	cfg = Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Nil(t, cfg.Seed, "seed stays unset without LENDIT_SEED")
}

func TestApplyEnv_IgnoresUnprefixedNames(t *testing.T) {
	setEnv(t, map[string]string{"USER": "root", "TIMEOUT": "soon", "BACKEND": "kuzu"})

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LENDIT_USER", "me"},
		{"LENDIT_TIMEOUT", "soon"},
		{"LENDIT_DEBOUNCE", "nope"},
		{"LENDIT_SEED", "nope"},
		{"LENDIT_LATENCY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := Default().ApplyEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown backend")

	cfg = Default()
	cfg.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())
}
