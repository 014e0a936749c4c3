// SPDX-License-Identifier: Apache-2.0

// Package config loads doccheck settings from defaults, an optional
// doccheck.yaml and DOCCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
)

// EnvPrefix prefixes every environment override, e.g. DOCCHECK_ENGINE_WORKERS.
const EnvPrefix = "DOCCHECK"

// Config holds all configuration for the application.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
}

// EngineConfig sizes the check worker pool.
type EngineConfig struct {
	Workers int `mapstructure:"workers"`
}

// CatalogConfig selects the rule catalog. Path, when set, wins over Version.
type CatalogConfig struct {
	Version string `mapstructure:"version"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load reads the configuration. An empty file searches the default
// locations, and a missing file there is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("doccheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.config/doccheck")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.workers", 4)
	v.SetDefault("catalog.version", catalog.DefaultVersion)
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func validate(cfg *Config) error {
	if cfg.Engine.Workers < 1 {
		return fmt.Errorf("engine workers must be at least 1, got: %d", cfg.Engine.Workers)
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", cfg.Log.Format)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// LoadCatalog returns the configured catalog.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog.Path != "" {
		return catalog.Load(c.Catalog.Path)
	}
	return catalog.Builtin(c.Catalog.Version)
}
