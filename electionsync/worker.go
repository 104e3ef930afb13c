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

// Package electionsync keeps the local election mirror current by
// refetching the election list on an interval
package electionsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database/models"
)

const DefaultInterval = time.Hour

// ErrInvalidInterval is returned by New for a non-positive interval
var ErrInvalidInterval = errors.New("sync interval must be positive")

// ElectionSource lists the elections known to the remote API
type ElectionSource interface {
	Elections(ctx context.Context) ([]civic.Election, error)
}

// ElectionStore is the subset of the election store the worker writes to
type ElectionStore interface {
	SyncElections(elections []models.Election) error
	PurgeDeleted() (int64, error)
}

type WorkerOptionFunc func(*Worker)

// WithInterval sets the time between refreshes
func WithInterval(interval time.Duration) WorkerOptionFunc {
	return func(w *Worker) {
		w.interval = interval
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) WorkerOptionFunc {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithPurgeDeleted removes soft-deleted rows after every successful refresh
func WithPurgeDeleted(purge bool) WorkerOptionFunc {
	return func(w *Worker) {
		w.purgeDeleted = purge
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) WorkerOptionFunc {
	return func(w *Worker) {
		w.promRegistry = registry
	}
}

// Worker refreshes the election mirror
type Worker struct {
	store        ElectionStore
	source       ElectionSource
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *workerMetrics
	interval     time.Duration
	purgeDeleted bool
}

// New creates a worker writing elections from source into store
func New(
	store ElectionStore,
	source ElectionSource,
	opts ...WorkerOptionFunc,
) (*Worker, error) {
	w := &Worker{
		store:    store,
		source:   source,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, w.interval)
	}
	if w.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if w.promRegistry != nil {
		w.metrics = newWorkerMetrics(w.promRegistry)
	}
	return w, nil
}

// Run refreshes once immediately and then on every tick until ctx is done.
// Failed refreshes are logged and do not stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info(
		"starting election sync",
		"component", "sync",
		"interval", w.interval.String(),
		"purge_deleted", w.purgeDeleted,
	)
	for {
		if _, err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error(
				"election sync failed",
				"component", "sync",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("stopping election sync", "component", "sync")
			return nil
		case <-ticker.C:
		}
	}
}

// Refresh performs a single sync and returns the number of elections
// written
func (w *Worker) Refresh(ctx context.Context) (int, error) {
	n, err := w.refresh(ctx)
	if w.metrics != nil {
		if err != nil {
			w.metrics.failures.Inc()
		} else {
			w.metrics.runs.Inc()
			w.metrics.elections.Set(float64(n))
		}
	}
	return n, err
}

func (w *Worker) refresh(ctx context.Context) (int, error) {
	start := time.Now()
	remote, err := w.source.Elections(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([]models.Election, 0, len(remote))
	for _, e := range remote {
		rows = append(rows, models.ElectionFromCivic(e))
	}
	if err := w.store.SyncElections(rows); err != nil {
		return 0, err
	}
	var purged int64
	if w.purgeDeleted {
		purged, err = w.store.PurgeDeleted()
		if err != nil {
			return 0, err
		}
	}
	w.logger.Debug(
		"synced elections",
		"component", "sync",
		"elections", len(rows),
		"purged", purged,
		"duration", time.Since(start).String(),
	)
	return len(rows), nil
}
