package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/donewithit/internal/model"
	"github.com/nissyi-gh/donewithit/internal/todo"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donewithit", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("order = \"newest\"\nverbose = true\n"), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, OrderNewest, cfg.Order)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, model.DefaultCategory, cfg.DefaultCategory)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, todo.DefaultPalette, cfg.Palette)
	assert.Equal(t, todo.NewestFirst, cfg.Ordering())
}

func TestLoadOrCreate_StorageTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[storage]\ndriver = \"postgres\"\ndsn = \"postgres://localhost/todo\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/todo", cfg.Storage.DSN)
	assert.Equal(t, "donewithit_blobs", cfg.Storage.Table)
}

func TestLoadOrCreate_RejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("order = "), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory driver", func(c *Config) { c.Storage.Driver = DriverMemory }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, true},
		{"unknown order", func(c *Config) { c.Order = "random" }, true},
		{"empty palette", func(c *Config) { c.Palette = nil }, true},
		{"reserved default category", func(c *Config) { c.DefaultCategory = "bin" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestInitialTab(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, model.TabAll, cfg.InitialTab())

	cfg.DefaultTab = "active"
	assert.Equal(t, model.TabActive, cfg.InitialTab())

	cfg.DefaultTab = "Work"
	assert.Equal(t, model.Tab("Work"), cfg.InitialTab())

	cfg.DefaultTab = ""
	assert.Equal(t, model.TabAll, cfg.InitialTab())
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "donewithit", "config.toml"), ResolveConfigPath())
}

func TestLogPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	cfg := defaultConfig()
	assert.Equal(t, filepath.Join(dir, "donewithit", "donewithit.log"), cfg.LogPath())

	cfg.LogFile = "/tmp/custom.log"
	assert.Equal(t, "/tmp/custom.log", cfg.LogPath())
}
