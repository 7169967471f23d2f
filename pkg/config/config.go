package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Countdown tick bounds. The interval is configurable so tests and debug
// setups can run the start sequence faster than the 1s production cadence.
const (
	DefaultCountdownIntervalMS = 1000
	MinCountdownIntervalMS     = 10
	MaxCountdownIntervalMS     = 5000
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Game   GameConfig   `yaml:"game"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type GameConfig struct {
	CountdownIntervalMS int `yaml:"countdown_interval_ms"`
	HitDamage           int `yaml:"hit_damage"`
}

// CountdownInterval returns the countdown tick interval as a duration.
func (g GameConfig) CountdownInterval() time.Duration {
	return time.Duration(g.CountdownIntervalMS) * time.Millisecond
}

// Default returns the configuration used when no file overrides are given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":4000",
			StaticDir: "web",
		},
		Log: LogConfig{
			File:  "app.log",
			Level: "info",
		},
		Game: GameConfig{
			CountdownIntervalMS: DefaultCountdownIntervalMS,
			HitDamage:           15,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configured values against their allowed bounds.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Game.CountdownIntervalMS < MinCountdownIntervalMS {
		return fmt.Errorf("game.countdown_interval_ms %d is below minimum %d",
			c.Game.CountdownIntervalMS, MinCountdownIntervalMS)
	}
	if c.Game.CountdownIntervalMS > MaxCountdownIntervalMS {
		return fmt.Errorf("game.countdown_interval_ms %d exceeds maximum %d",
			c.Game.CountdownIntervalMS, MaxCountdownIntervalMS)
	}
	if c.Game.HitDamage <= 0 {
		return fmt.Errorf("game.hit_damage must be positive")
	}
	return nil
}
