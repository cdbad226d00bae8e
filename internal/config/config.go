package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Discord  DiscordConfig  `yaml:"discord"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Server   ServerConfig   `yaml:"server"`
	Debug    *bool          `yaml:"debug"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiscordConfig holds the bot credentials.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	ApplicationID string `yaml:"application_id"`
	PublicKey     string `yaml:"public_key"`
	GuildID       string `yaml:"guild_id"`
}

// ScheduleConfig configures the refresh and daily-post intervals.
type ScheduleConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
	DailyInterval   string `yaml:"daily_interval"`
}

// ParseRefreshInterval returns the cache refresh interval as time.Duration.
func (s ScheduleConfig) ParseRefreshInterval() time.Duration {
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// ParseDailyInterval returns the daily-post interval as time.Duration.
func (s ScheduleConfig) ParseDailyInterval() time.Duration {
	d, err := time.ParseDuration(s.DailyInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DebugEnabled reports the debug flag, defaulting to true.
func (c *Config) DebugEnabled() bool {
	if c.Debug == nil {
		return true
	}
	return *c.Debug
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./leetforum.db"},
		Schedule: ScheduleConfig{
			RefreshInterval: "168h",
			DailyInterval:   "24h",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks that the required secrets are present. The process
// fails fast when either is missing.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("bot token is required (set DISCORD_BOT_TOKEN or discord.token)")
	}
	if c.Database.Path == "" {
		return errors.New("database path is required (set DATABASE_URL or database.path)")
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_APPLICATION_ID"); v != "" {
		cfg.Discord.ApplicationID = v
	}
	if v := os.Getenv("DISCORD_PUBLIC_KEY"); v != "" {
		cfg.Discord.PublicKey = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LEETFORUM_DEBUG"); v != "" {
		debug := v == "1" || v == "true"
		cfg.Debug = &debug
	}
}
