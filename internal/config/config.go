/*
Package config
File: config.go
Description:
    Runtime settings for the reelempire binary. Values come, in increasing
    priority, from built-in defaults, an optional YAML settings file,
    REELEMPIRE_* environment variables and command-line flags.
    Game content tables are separate (see game.LoadContent).
*/

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/everforgeworks/reel-empire/internal/game"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "REELEMPIRE"

// Setting keys. Flags use the same names.
const (
	KeyConfig       = "config"
	KeyAddr         = "addr"
	KeySeed         = "seed"
	KeyContent      = "content"
	KeyDB           = "db"
	KeyLogLevel     = "log-level"
	KeyStudioName   = "studio-name"
	KeyExpiryPolicy = "expiry-policy"
	KeyTickInterval = "tick-interval"
)

var keys = []string{KeyConfig, KeyAddr, KeySeed, KeyContent, KeyDB, KeyLogLevel, KeyStudioName, KeyExpiryPolicy, KeyTickInterval}

// Settings is the resolved runtime configuration.
type Settings struct {
	Addr         string
	Seed         int64  // 0 seeds from the clock
	Content      string // Empty uses the embedded tables
	DB           string // Empty disables the journal
	LogLevel     hclog.Level
	StudioName   string
	ExpiryPolicy game.ExpiryPolicy
	TickInterval time.Duration // 0 disables auto-advance
}

// New returns a viper instance with defaults and environment overrides wired.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyContent, "")
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStudioName, "Reel Empire Pictures")
	v.SetDefault(KeyExpiryPolicy, string(game.ExpiryRetire))
	v.SetDefault(KeyTickInterval, "0s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known setting that has a matching flag in fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, k := range keys {
		f := fs.Lookup(k)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(k, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", k, err)
		}
	}
	return nil
}

// Load resolves and validates the settings.
func Load(v *viper.Viper) (*Settings, error) {
	// 1. Optional settings file
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	// 2. Resolve + validate
	s := &Settings{
		Addr:       v.GetString(KeyAddr),
		Seed:       v.GetInt64(KeySeed),
		Content:    v.GetString(KeyContent),
		DB:         v.GetString(KeyDB),
		StudioName: strings.TrimSpace(v.GetString(KeyStudioName)),
	}

	level := hclog.LevelFromString(v.GetString(KeyLogLevel))
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid %s %q", KeyLogLevel, v.GetString(KeyLogLevel))
	}
	s.LogLevel = level

	policy, err := game.ParseExpiryPolicy(v.GetString(KeyExpiryPolicy))
	if err != nil {
		return nil, err
	}
	s.ExpiryPolicy = policy

	s.TickInterval = v.GetDuration(KeyTickInterval)
	if s.TickInterval < 0 {
		return nil, fmt.Errorf("invalid %s %s: must not be negative", KeyTickInterval, s.TickInterval)
	}
	if s.StudioName == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyStudioName)
	}
	return s, nil
}

// GameOptions converts the settings into options for game.NewGame.
func (s *Settings) GameOptions() game.Options {
	return game.Options{StudioName: s.StudioName, ExpiryPolicy: s.ExpiryPolicy}
}
