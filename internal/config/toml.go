// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Race     RaceConfig     `toml:"race"`
	Store    StoreConfig    `toml:"store"`
	Redis    RedisConfig    `toml:"redis"`
	Coach    CoachConfig    `toml:"coach"`
	Server   ServerConfig   `toml:"server"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode     *string  `toml:"mode"`
	Lang     *string  `toml:"lang"`
	Words    *int     `toml:"words"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
}

// RaceConfig maps bot race settings.
type RaceConfig struct {
	BotsFile *string `toml:"bots-file"`
	AvgWPM   *int    `toml:"avg-wpm"`
	Words    *int    `toml:"words"`
}

// StoreConfig selects the SQL backend.
type StoreConfig struct {
	Driver *string `toml:"driver"`
	DSN    *string `toml:"dsn"`
	Path   *string `toml:"path"`
}

// RedisConfig enables the Redis key-stat and race store.
type RedisConfig struct {
	Enabled  *bool   `toml:"enabled"`
	Addr     *string `toml:"addr"`
	Password *string `toml:"password"`
	DB       *int    `toml:"db"`
	User     *string `toml:"user"`
}

// CoachConfig selects the drill generator.
type CoachConfig struct {
	Generator *string `toml:"generator"`
	Model     *string `toml:"model"`
	APIKey    *string `toml:"api-key"`
}

// ServerConfig maps the HTTP API settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
