// Package config loads the tool-level configuration from
// ~/.xbuild/config.yaml. Per-package deployment settings live in the
// package manifest, not here.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds tool-wide defaults that apply to every package.
type Config struct {
	Defaults  Defaults  `mapstructure:"defaults"`
	Simulator Simulator `mapstructure:"simulator"`
}

// Defaults contains fallbacks for flags the user did not pass.
type Defaults struct {
	// Configuration is the build configuration used when --release is
	// not given: "debug" or "release".
	Configuration string `mapstructure:"configuration"`
	// TargetDir is the build tool output directory the generated
	// project is placed under.
	TargetDir string `mapstructure:"target_dir"`
}

// Simulator contains simulator behavior toggles.
type Simulator struct {
	// OpenApp controls whether `xbuild boot` brings the Simulator app
	// window to the front after booting.
	OpenApp *bool `mapstructure:"open_app"`
}

// ShouldOpenApp defaults to true when not explicitly set.
func (s *Simulator) ShouldOpenApp() bool {
	if s.OpenApp == nil {
		return true
	}
	return *s.OpenApp
}

// Load reads ~/.xbuild/config.yaml, falling back to defaults when the
// file does not exist.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, ".xbuild"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Defaults.Configuration != "debug" && cfg.Defaults.Configuration != "release" {
		return nil, fmt.Errorf("invalid defaults.configuration %q (want \"debug\" or \"release\")", cfg.Defaults.Configuration)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.configuration", "debug")
	v.SetDefault("defaults.target_dir", "target")
}
