package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/mo"
)

const (
	defaultConfigPath        = "config.json"
	defaultPrefix            = "."
	defaultSayChannelTimeout = 30 * time.Second
	defaultSayMessageTimeout = 60 * time.Second
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, falling back to system environment variables")
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

type Config struct {
	DiscordToken       string `json:"token" env:"DISCORD_TOKEN"`
	Prefix             string `json:"prefix" env:"COMMAND_PREFIX"`
	ModRoleID          string `json:"modRoleId" env:"MOD_ROLE_ID"`
	RequireModRoleOnly bool   `json:"requireModRoleOnly" env:"REQUIRE_MOD_ROLE_ONLY"`
	WelcomeChannelID   string `json:"welcomeChannelId" env:"WELCOME_CHANNEL_ID"`
	StoragePath        string `json:"storagePath" env:"STORAGE_PATH"`

	SayChannelTimeout time.Duration `json:"-" env:"SAY_CHANNEL_TIMEOUT"`
	SayMessageTimeout time.Duration `json:"-" env:"SAY_MESSAGE_TIMEOUT"`
	MetricsAddr       string        `json:"-" env:"METRICS_ADDR"`

	Log LogConfig `json:"-" envPrefix:"LOG_"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Dir        string `env:"DIR"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"20"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"14"`
}

// New loads the configuration from CONFIG_PATH (default config.json, optional)
// and the environment.
func New() (*Config, error) {
	path := Get("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return Load(path)
}

// Load reads the JSON file at path when it exists, then applies environment
// overrides and defaults. Environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DiscordToken == "" {
		cfg.DiscordToken = Get("TOKEN")
	}
	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is not set")
	}

	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.SayChannelTimeout <= 0 {
		cfg.SayChannelTimeout = defaultSayChannelTimeout
	}
	if cfg.SayMessageTimeout <= 0 {
		cfg.SayMessageTimeout = defaultSayMessageTimeout
	}

	return cfg, nil
}

// ModRole returns the configured moderator role, if any.
func (c *Config) ModRole() mo.Option[string] {
	if id := strings.TrimSpace(c.ModRoleID); id != "" {
		return mo.Some(id)
	}
	return mo.None[string]()
}

// WelcomeEnabled reports whether member-join greetings are configured.
func (c *Config) WelcomeEnabled() bool {
	return c.WelcomeChannelID != ""
}
