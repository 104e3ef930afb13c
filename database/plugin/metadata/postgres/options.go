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

package postgres

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type PostgresOptionFunc func(*MetadataStorePostgres)

// ConnConfig holds the Postgres connection settings. Empty fields fall back
// to defaults; a non-empty DSN takes precedence over everything else.
type ConnConfig struct {
	Host     string `yaml:"host"     envconfig:"HOST"`
	Port     uint   `yaml:"port"     envconfig:"PORT"`
	User     string `yaml:"user"     envconfig:"USER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	Database string `yaml:"database" envconfig:"DATABASE"`
	SSLMode  string `yaml:"sslMode"  envconfig:"SSLMODE"`
	TimeZone string `yaml:"timeZone" envconfig:"TIMEZONE"`
	DSN      string `yaml:"dsn"      envconfig:"DSN"`
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(
	registry prometheus.Registerer,
) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.promRegistry = registry
	}
}

// WithConnConfig applies every connection setting of cfg
func WithConnConfig(cfg ConnConfig) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.host = cfg.Host
		m.port = cfg.Port
		m.user = cfg.User
		m.password = cfg.Password
		m.database = cfg.Database
		m.sslMode = cfg.SSLMode
		m.timeZone = cfg.TimeZone
		m.dsn = cfg.DSN
	}
}

// WithDSN specifies a full Postgres DSN string and takes precedence over
// individual connection options.
func WithDSN(dsn string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.dsn = dsn
	}
}
