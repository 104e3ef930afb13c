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

package civicprep

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/civicprep/database"
	"github.com/blinklabs-io/civicprep/database/plugin/metadata/postgres"
)

const (
	DefaultSyncInterval    = time.Hour
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	httpClient      *http.Client
	postgres        postgres.ConnConfig
	dataDir         string
	metadataPlugin  string
	apiKey          string
	baseURL         string
	geocodeBaseURL  string
	version         string
	syncInterval    time.Duration
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
	purgeDeleted    bool
	tracing         bool
	tracingStdout   bool
}

func (n *Node) configValidate() error {
	switch n.config.metadataPlugin {
	case "", database.MetadataPluginSqlite, database.MetadataPluginPostgres:
	default:
		return fmt.Errorf(
			"%w: %s",
			database.ErrUnknownMetadataPlugin,
			n.config.metadataPlugin,
		)
	}
	if n.config.syncInterval <= 0 {
		return errors.New("sync interval must be positive")
	}
	if n.config.requestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	return nil
}

type ConfigOptionFunc func(*Config)

// NewConfig creates a new civicprep config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		metadataPlugin:  database.MetadataPluginSqlite,
		syncInterval:    DefaultSyncInterval,
		requestTimeout:  DefaultRequestTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the directory holding the election database
// and the preferences. An empty path keeps everything in memory.
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithMetadataPlugin selects the election store backend
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithPostgres specifies the connection settings for the postgres backend
func WithPostgres(cfg postgres.ConnConfig) ConfigOptionFunc {
	return func(c *Config) {
		c.postgres = cfg
	}
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithAPIKey specifies the key sent with every API request
func WithAPIKey(apiKey string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiKey = apiKey
	}
}

// WithBaseURL overrides the civic information API root
func WithBaseURL(baseURL string) ConfigOptionFunc {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

// WithGeocodeBaseURL overrides the geocoding API root
func WithGeocodeBaseURL(baseURL string) ConfigOptionFunc {
	return func(c *Config) {
		c.geocodeBaseURL = baseURL
	}
}

// WithHTTPClient specifies the HTTP client used for API requests. It takes
// precedence over WithRequestTimeout.
func WithHTTPClient(client *http.Client) ConfigOptionFunc {
	return func(c *Config) {
		c.httpClient = client
	}
}

// WithRequestTimeout specifies the timeout of a single API request
func WithRequestTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.requestTimeout = timeout
	}
}

// WithSyncInterval specifies the time between background election syncs
func WithSyncInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.syncInterval = interval
	}
}

// WithPurgeDeleted removes soft-deleted elections after each background sync
func WithPurgeDeleted(purge bool) ConfigOptionFunc {
	return func(c *Config) {
		c.purgeDeleted = purge
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies how long Stop waits for tracing to flush
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithVersion specifies the version reported in traces
func WithVersion(version string) ConfigOptionFunc {
	return func(c *Config) {
		c.version = version
	}
}
