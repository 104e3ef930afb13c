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

// Package database is the local mirror of elections. Every committed write
// is announced on the event bus so live views can refresh.
package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/civicprep/database/plugin/metadata"
	"github.com/blinklabs-io/civicprep/database/plugin/metadata/postgres"
	"github.com/blinklabs-io/civicprep/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/civicprep/event"
)

const (
	MetadataPluginSqlite   = "sqlite"
	MetadataPluginPostgres = "postgres"
)

// ErrUnknownMetadataPlugin is returned for an unsupported metadata plugin name
var ErrUnknownMetadataPlugin = errors.New("unknown metadata plugin")

// Config holds the settings for New
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	EventBus       *event.EventBus
	DataDir        string
	MetadataPlugin string
	Postgres       postgres.ConnConfig
}

type Database struct {
	logger   *slog.Logger
	metadata metadata.MetadataStore
	eventBus *event.EventBus
	metrics  *databaseMetrics
	dataDir  string
	ownsBus  bool
}

// New opens the configured metadata store. A nil config selects an
// in-memory SQLite store.
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var store metadata.MetadataStore
	switch cfg.MetadataPlugin {
	case "", MetadataPluginSqlite:
		s, err := sqlite.New(
			sqlite.WithDataDir(cfg.DataDir),
			sqlite.WithLogger(logger),
			sqlite.WithPromRegistry(cfg.PromRegistry),
		)
		if err != nil {
			if s != nil {
				_ = s.Close()
			}
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		store = s
	case MetadataPluginPostgres:
		p, err := postgres.New(
			postgres.WithConnConfig(cfg.Postgres),
			postgres.WithLogger(logger),
			postgres.WithPromRegistry(cfg.PromRegistry),
		)
		if err != nil {
			if p != nil {
				_ = p.Close()
			}
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		store = p
	default:
		return nil, fmt.Errorf(
			"%w: %s",
			ErrUnknownMetadataPlugin,
			cfg.MetadataPlugin,
		)
	}
	db := &Database{
		logger:   logger,
		metadata: store,
		eventBus: cfg.EventBus,
		dataDir:  cfg.DataDir,
	}
	if db.eventBus == nil {
		db.eventBus = event.NewEventBus(cfg.PromRegistry, logger)
		db.ownsBus = true
	}
	if cfg.PromRegistry != nil {
		db.metrics = newDatabaseMetrics(cfg.PromRegistry)
	}
	return db, nil
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// EventBus returns the bus carrying election change events
func (d *Database) EventBus() *event.EventBus {
	return d.eventBus
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Close cleans up the database connections. Live views end when a bus
// owned by the database is stopped.
func (d *Database) Close() error {
	if d.ownsBus {
		d.eventBus.Stop()
	}
	return d.metadata.Close()
}

func (d *Database) publishChange(op event.ElectionOp, ids ...int64) {
	if d.metrics != nil {
		d.metrics.writes.WithLabelValues(string(op)).Inc()
	}
	d.eventBus.Publish(
		event.ElectionChangedEventType,
		event.NewEvent(
			event.ElectionChangedEventType,
			event.ElectionChangedEvent{Op: op, IDs: ids},
		),
	)
}
