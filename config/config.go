// Copyright 2025 The qsim Authors
// This file is part of the qsim library.
//
// The qsim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The qsim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the qsim library. If not, see <http://www.gnu.org/licenses/>.

// Package config loads runtime configuration. Values come from an optional
// YAML file, then the environment (a .env file is honored when present), with
// environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration for the CLI and the job server.
type Config struct {
	// Addr is the job server listen address.
	Addr string `yaml:"addr"`
	// DataDir holds the run archive database.
	DataDir string `yaml:"data_dir"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogPretty switches console output on.
	LogPretty bool `yaml:"log_pretty"`
	// DefaultShots is used when a run does not specify a shot count.
	DefaultShots int `yaml:"default_shots"`
	// Workers bounds the local backend's sampling pool; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Seed makes runs reproducible when nonzero.
	Seed int64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8089",
		DataDir:      "./data",
		LogLevel:     "info",
		DefaultShots: 1024,
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg.Addr = getEnv("QSIM_ADDR", cfg.Addr)
	cfg.DataDir = getEnv("QSIM_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("QSIM_LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvBool("QSIM_LOG_PRETTY", cfg.LogPretty)
	cfg.DefaultShots = getEnvInt("QSIM_DEFAULT_SHOTS", cfg.DefaultShots)
	cfg.Workers = getEnvInt("QSIM_WORKERS", cfg.Workers)
	cfg.Seed = getEnvInt64("QSIM_SEED", cfg.Seed)

	if cfg.DefaultShots <= 0 {
		return cfg, fmt.Errorf("default_shots must be positive, got %d", cfg.DefaultShots)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
