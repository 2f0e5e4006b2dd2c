package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "league.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "HLiga", cfg.Server.Name)
	assert.Equal(t, 10, cfg.League.TopSize)
	assert.Equal(t, "en", cfg.League.Locale)
	assert.False(t, cfg.League.PruneOnSync)
	assert.Equal(t, 30*24*time.Hour, cfg.Season.DefaultDuration)
	assert.True(t, cfg.Season.AutoEnd)
	assert.Equal(t, []string{"simpleclans", "leafguilds"}, cfg.Providers.Priority)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[league]
initial_points = 100
top_size = 5
locale = "pt-BR"
prune_on_sync = true
flush_interval = "45s"

[season]
default_duration = "168h"
auto_end = false

[providers]
priority = ["leafguilds"]
`))
	require.NoError(t, err)

	assert.Equal(t, int64(100), cfg.League.InitialPoints)
	assert.Equal(t, 5, cfg.League.TopSize)
	assert.Equal(t, "pt-BR", cfg.League.Locale)
	assert.True(t, cfg.League.PruneOnSync)
	assert.Equal(t, 45*time.Second, cfg.League.FlushInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Season.DefaultDuration)
	assert.False(t, cfg.Season.AutoEnd)
	assert.Equal(t, []string{"leafguilds"}, cfg.Providers.Priority)

	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[league\ntop_size = 5"))
	assert.Error(t, err)
}
