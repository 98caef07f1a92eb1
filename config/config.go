// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package config loads run configuration from a file and AGENT_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/typedai/agent"
)

// Config carries the run defaults shared by the agents of a process.
type Config struct {
	// Model is the default "<provider>:<model>" selector.
	Model string `mapstructure:"model"`

	MaxRounds      int `mapstructure:"max_rounds"      validate:"min=1,max=1000"`
	MaxCorrections int `mapstructure:"max_corrections" validate:"min=0,max=100"`

	TokenAccounting bool   `mapstructure:"token_accounting"`
	LogLevel        string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		MaxRounds:      10,
		MaxCorrections: 2,
		LogLevel:       "info",
	}
}

// Load reads the configuration file at path (yaml or json), or agent.{yaml,json}
// in the working directory when path is empty, and applies AGENT_* environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	loader := viper.New()
	if path != "" {
		loader.SetConfigFile(path)
	} else {
		loader.SetConfigName("agent")
		loader.AddConfigPath(".")
	}
	loader.SetEnvPrefix("AGENT")
	loader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	loader.AutomaticEnv()

	defaults := Default()
	loader.SetDefault("model", defaults.Model)
	loader.SetDefault("max_rounds", defaults.MaxRounds)
	loader.SetDefault("max_corrections", defaults.MaxCorrections)
	loader.SetDefault("token_accounting", defaults.TokenAccounting)
	loader.SetDefault("log_level", defaults.LogLevel)

	if err := loader.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// RunOptions adapts the configuration to run options.
func (c *Config) RunOptions() []agent.RunOption {
	options := []agent.RunOption{
		agent.WithMaxRounds(c.MaxRounds),
		agent.WithMaxCorrections(c.MaxCorrections),
	}
	if c.TokenAccounting {
		options = append(options, agent.WithTokenAccounting())
	}

	return options
}

// Logger builds a production logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
