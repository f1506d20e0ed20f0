// Package config loads the service configuration from YAML, filling
// defaults for anything the file leaves unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/provider"
	"github.com/kurral/feedengine/internal/rank"
	"github.com/kurral/feedengine/internal/reputation"
	"github.com/kurral/feedengine/internal/tune"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// RedisConfig holds connection settings for the score and engagement
// stores. Leave Addr empty to run fully in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// EngagementMax bounds the per-viewer engagement log length.
	EngagementMax int64 `yaml:"engagement_max"`
}

// CacheConfig tunes the feed memoization cache.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel   string `yaml:"log_level"`
	LogConsole bool   `yaml:"log_console"`
}

// Config is the top-level configuration.
type Config struct {
	App        AppConfig          `yaml:"app"`
	Server     ServerConfig       `yaml:"server"`
	Redis      RedisConfig        `yaml:"redis"`
	Cache      CacheConfig        `yaml:"cache"`
	Policy     policy.Config      `yaml:"policy"`
	Ranking    rank.SignalWeights `yaml:"ranking"`
	Reputation reputation.Config  `yaml:"reputation"`
	Tuning     tune.Config        `yaml:"tuning"`
	Verifier   provider.Config    `yaml:"verifier"`
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		App: AppConfig{LogLevel: "info", LogConsole: true},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis:      RedisConfig{EngagementMax: 500},
		Cache:      CacheConfig{TTL: 30 * time.Second, CleanupInterval: time.Minute},
		Policy:     policy.DefaultConfig(),
		Ranking:    rank.DefaultWeights(),
		Reputation: reputation.DefaultConfig(),
		Tuning:     tune.DefaultConfig(),
		Verifier:   provider.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every tunable section.
func (c Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Ranking.Validate(); err != nil {
		return err
	}
	if err := c.Reputation.Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	return nil
}
