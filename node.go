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

// Package civicprep wires the election store, the preference store and the
// civic API clients into a single Node
package civicprep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database"
	"github.com/blinklabs-io/civicprep/electionsync"
	"github.com/blinklabs-io/civicprep/event"
	"github.com/blinklabs-io/civicprep/internal/tracing"
	"github.com/blinklabs-io/civicprep/prefs"
	"github.com/blinklabs-io/civicprep/viewstate"
)

// ErrNotOpen is returned when a Node is used before Open
var ErrNotOpen = errors.New("node is not open")

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	prefs         *prefs.Store
	client        *civic.Client
	geocoder      *civic.GeocodeClient
	shutdownFuncs []func(context.Context) error
	config        Config
	mu            sync.Mutex
	opened        bool
	openErr       error
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Open sets up tracing, the stores and the API clients. A failed Open
// releases what it opened, and later calls return the same error.
func (n *Node) Open(ctx context.Context) (err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.opened {
		return nil
	}
	if n.openErr != nil {
		return n.openErr
	}
	defer func() {
		if err != nil {
			n.openErr = err
			n.releaseOpened(ctx)
		}
	}()
	// Configure tracing
	shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
		Enabled: n.config.tracing,
		Stdout:  n.config.tracingStdout,
		Version: n.config.version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	n.shutdownFuncs = append(n.shutdownFuncs, shutdownTracing)
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		EventBus:       n.eventBus,
		MetadataPlugin: n.config.metadataPlugin,
		Postgres:       n.config.postgres,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load preferences
	prefStore, err := prefs.New(
		prefs.WithDataDir(n.config.dataDir),
		prefs.WithLogger(n.config.logger),
		prefs.WithPromRegistry(n.config.promRegistry),
	)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	n.prefs = prefStore
	// Configure API clients
	httpClient := n.config.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: n.config.requestTimeout}
	}
	clientOpts := []civic.ClientOption{
		civic.WithHTTPClient(httpClient),
		civic.WithLogger(n.config.logger),
		civic.WithPromRegistry(n.config.promRegistry),
	}
	if n.config.baseURL != "" {
		n.client = civic.NewClient(
			n.config.apiKey,
			append(clientOpts, civic.WithBaseURL(n.config.baseURL))...,
		)
	} else {
		n.client = civic.NewClient(n.config.apiKey, clientOpts...)
	}
	if n.config.geocodeBaseURL != "" {
		n.geocoder = civic.NewGeocodeClient(
			n.config.apiKey,
			append(clientOpts, civic.WithBaseURL(n.config.geocodeBaseURL))...,
		)
	} else {
		n.geocoder = civic.NewGeocodeClient(n.config.apiKey, clientOpts...)
	}
	if n.config.apiKey == "" {
		n.config.logger.Warn(
			"no API key configured, remote calls will be rejected",
			"component", "node",
		)
	}
	n.opened = true
	return nil
}

// releaseOpened must be called with mu held
func (n *Node) releaseOpened(ctx context.Context) {
	if n.prefs != nil {
		if err := n.prefs.Close(); err != nil {
			n.config.logger.Warn("failed to close preferences", "component", "node", "error", err)
		}
		n.prefs = nil
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.config.logger.Warn("failed to close database", "component", "node", "error", err)
		}
		n.db = nil
	}
	for _, fn := range n.shutdownFuncs {
		if err := fn(ctx); err != nil {
			n.config.logger.Warn("shutdown func failed", "component", "node", "error", err)
		}
	}
	n.shutdownFuncs = nil
}

func (n *Node) checkOpen() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.opened {
		return ErrNotOpen
	}
	return nil
}

// Run keeps the election mirror current until ctx is done
func (n *Node) Run(ctx context.Context) error {
	if err := n.Open(ctx); err != nil {
		return err
	}
	worker, err := electionsync.New(
		n.db,
		n.client,
		electionsync.WithInterval(n.config.syncInterval),
		electionsync.WithPurgeDeleted(n.config.purgeDeleted),
		electionsync.WithLogger(n.config.logger),
		electionsync.WithPromRegistry(n.config.promRegistry),
	)
	if err != nil {
		return fmt.Errorf("failed to create sync worker: %w", err)
	}
	return worker.Run(ctx)
}

// ElectionState returns a new election view state following ctx
func (n *Node) ElectionState(
	ctx context.Context,
) (*viewstate.ElectionState, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	return viewstate.NewElectionState(ctx, n.db, n.client, n.config.logger)
}

// RepresentativeState returns a new representative view state backed by
// the preference store
func (n *Node) RepresentativeState() (*viewstate.RepresentativeState, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}
	return viewstate.NewRepresentativeState(
		n.client,
		n.prefs,
		n.config.logger,
	), nil
}

func (n *Node) Database() *database.Database {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.db
}

func (n *Node) Prefs() *prefs.Store {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.prefs
}

func (n *Node) Client() *civic.Client {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.client
}

func (n *Node) Geocoder() *civic.GeocodeClient {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.geocoder
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		n.config.shutdownTimeout,
	)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown", "component", "node")
	n.mu.Lock()
	defer n.mu.Unlock()
	// Stop delivering events before the stores go away
	n.eventBus.Stop()
	if n.prefs != nil {
		if closeErr := n.prefs.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("preferences close: %w", closeErr))
		}
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown func: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil
	n.opened = false
	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	return err
}
