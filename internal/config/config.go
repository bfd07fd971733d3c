// Package config loads LoBotomy's server configuration: battlefield
// geometry, turn timing, energy constants and the debug flags, layered as
// defaults overridden by an optional config file and environment
// variables via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config holds every tunable the server needs at startup. Passed through a
// constructor rather than read from package-level state, so tests can
// build independent instances side by side.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`

	TurnDurationMS int     `mapstructure:"turn_duration_ms"`
	DeadTurnsInit  int     `mapstructure:"dead_turns_init"`
	TurnHeal       float64 `mapstructure:"turn_heal"`
	MaxEnergy      float64 `mapstructure:"max_energy"`

	ProtocolVersion int `mapstructure:"protocol_version"`

	Debug      bool `mapstructure:"debug"`
	DebugNames bool `mapstructure:"debug_names"`
}

// portFromName is the sum of byte values of "LoBotomyServer", used as the
// default port so the default config is reproducible without a magic
// number.
func portFromName() int {
	const name = "LoBotomyServer"
	sum := 0
	for _, b := range []byte(name) {
		sum += int(b)
	}
	return sum
}

// Defaults returns the configuration the spec's constants describe.
func Defaults() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            portFromName(),
		Width:           2.0,
		Height:          2.0,
		TurnDurationMS:  5000,
		DeadTurnsInit:   5,
		TurnHeal:        0.2,
		MaxEnergy:       1.0,
		ProtocolVersion: 0,
	}
}

// Load builds a Viper instance seeded with Defaults, optionally merges a
// config file at path (ignored if empty or not found), and applies
// LOBOTOMY_-prefixed environment overrides, returning the resolved Config.
func Load(path string) (Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("width", defaults.Width)
	v.SetDefault("height", defaults.Height)
	v.SetDefault("turn_duration_ms", defaults.TurnDurationMS)
	v.SetDefault("dead_turns_init", defaults.DeadTurnsInit)
	v.SetDefault("turn_heal", defaults.TurnHeal)
	v.SetDefault("max_energy", defaults.MaxEnergy)
	v.SetDefault("protocol_version", defaults.ProtocolVersion)
	v.SetDefault("debug", false)
	v.SetDefault("debug_names", false)

	v.SetEnvPrefix("lobotomy")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("loading config from %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
