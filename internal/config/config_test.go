package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/admin", cfg.BasePath)
	assert.Equal(t, 25, cfg.DefaultPageSize)
	assert.True(t, cfg.DemoData)
	assert.False(t, cfg.REST.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
default_page_size: 50
log_level: debug
rest:
  base_url: https://rental.example.test/api
  modules: [agreements, vehicles]
`), 0o644))
	t.Setenv("GRID_ADDR", ":7070")
	t.Setenv("GRID_REST__API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, 50, cfg.DefaultPageSize)
	assert.Equal(t, "https://rental.example.test/api", cfg.REST.BaseURL)
	assert.Equal(t, "secret", cfg.REST.APIKey)
	assert.Equal(t, []string{"agreements", "vehicles"}, cfg.REST.Modules)
	assert.True(t, cfg.REST.Enabled())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_page_size: 0\n"), 0o644))
	if _, err := Load(path); err == nil {
		t.Fatalf("expected page size validation error")
	}

	t.Setenv("GRID_LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected log level validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
