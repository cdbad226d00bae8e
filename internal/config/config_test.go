package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./leetforum.db", cfg.Database.Path)
	assert.Equal(t, 7*24*time.Hour, cfg.Schedule.ParseRefreshInterval())
	assert.Equal(t, 24*time.Hour, cfg.Schedule.ParseDailyInterval())
	assert.True(t, cfg.DebugEnabled(), "debug defaults to on")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/bot.db
discord:
  token: abc
  application_id: "123"
schedule:
  refresh_interval: 48h
server:
  port: 9999
debug: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bot.db", cfg.Database.Path)
	assert.Equal(t, "abc", cfg.Discord.Token)
	assert.Equal(t, 48*time.Hour, cfg.Schedule.ParseRefreshInterval())
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.False(t, cfg.DebugEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "env-token")
	t.Setenv("DATABASE_URL", "/data/env.db")
	t.Setenv("LEETFORUM_DEBUG", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, "/data/env.db", cfg.Database.Path)
	assert.False(t, cfg.DebugEnabled())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err, "missing token must fail fast")
	assert.Contains(t, err.Error(), "token")

	cfg.Discord.Token = "abc"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())
}

func TestBadIntervalFallsBack(t *testing.T) {
	s := ScheduleConfig{RefreshInterval: "not-a-duration", DailyInterval: "nope"}
	assert.Equal(t, 7*24*time.Hour, s.ParseRefreshInterval())
	assert.Equal(t, 24*time.Hour, s.ParseDailyInterval())
}
