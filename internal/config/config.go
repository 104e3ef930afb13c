// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/civicprep/database/plugin/metadata/postgres"
)

type ctxKey string

const configContextKey ctxKey = "civicprep.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	EnvPrefix = "civicprep"

	// APIKeyEnvAlias is read when no API key is configured otherwise
	APIKeyEnvAlias = "GOOGLE_CIVIC_API_KEY"

	DefaultMetadataPlugin = "sqlite"
	DefaultDataDir        = ".civicprep"
	DefaultEnvFile        = ".env"
)

// ErrInvalidConfig wraps every validation failure from LoadConfig
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Postgres        postgres.ConnConfig `yaml:"postgres"        envconfig:"POSTGRES"`
	APIKey          string              `yaml:"apiKey"          envconfig:"API_KEY"`
	BaseURL         string              `yaml:"baseUrl"                                 split_words:"true"`
	GeocodeBaseURL  string              `yaml:"geocodeBaseUrl"                          split_words:"true"`
	DataDir         string              `yaml:"dataDir"                                 split_words:"true"`
	MetadataPlugin  string              `yaml:"metadataPlugin"                          split_words:"true"`
	MetricsBindAddr string              `yaml:"metricsBindAddr"                         split_words:"true"`
	RequestTimeout  time.Duration       `yaml:"requestTimeout"                          split_words:"true"`
	SyncInterval    time.Duration       `yaml:"syncInterval"                            split_words:"true"`
	MetricsPort     uint                `yaml:"metricsPort"                             split_words:"true"`
	PurgeDeleted    bool                `yaml:"purgeDeleted"                            split_words:"true"`
	Tracing         bool                `yaml:"tracing"`
	TracingStdout   bool                `yaml:"tracingStdout"                           split_words:"true"`
	Debug           bool                `yaml:"debug"`
}

// DefaultConfig returns the settings used when nothing overrides them
func DefaultConfig() *Config {
	return &Config{
		DataDir:         DefaultDataDir,
		MetadataPlugin:  DefaultMetadataPlugin,
		MetricsBindAddr: "127.0.0.1",
		MetricsPort:     12799,
		RequestTimeout:  30 * time.Second,
		SyncInterval:    time.Hour,
	}
}

// LoadConfig builds the config from defaults, then the YAML file, then the
// environment. An empty configFile falls back to ~/.civicprep/civicprep.yaml
// and /etc/civicprep/civicprep.yaml when they exist. A .env file in the
// working directory is loaded into the environment first; variables that
// are already set win.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.civicprep/civicprep.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".civicprep", "civicprep.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/civicprep/civicprep.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/civicprep/civicprep.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnvAlias)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail later and less
// clearly
func (c *Config) Validate() error {
	switch c.MetadataPlugin {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf(
			"%w: unknown metadataPlugin %q (must be 'sqlite' or 'postgres')",
			ErrInvalidConfig,
			c.MetadataPlugin,
		)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: requestTimeout must be positive", ErrInvalidConfig)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("%w: syncInterval must be positive", ErrInvalidConfig)
	}
	return nil
}
