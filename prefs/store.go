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

// Package prefs is a small durable key-value store for the last entered
// address fields
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/civicprep/observable"
)

const (
	// Subdirectory of the data dir holding the badger files
	prefsDir = "prefs"

	keyPrefix = "pref:"

	gcInterval = 5 * time.Minute

	// A handful of short strings needs none of the default sizing
	valueLogFileSize = 16 << 20
	memTableSize     = 8 << 20
)

// ErrStoreClosed is recorded when a write arrives after Close
var ErrStoreClosed = errors.New("preferences store is closed")

// Values maps preference keys to their stored values
type Values map[string]string

// Store keeps preferences in badger. Writes do not return errors: a failed
// write is logged and published through LastError. Observers of the values
// cell are called with the store locked and must not write preferences.
type Store struct {
	promRegistry prometheus.Registerer
	db           *badger.DB
	logger       *slog.Logger
	metrics      *storeMetrics
	values       *observable.Cell[Values]
	lastError    *observable.Cell[error]
	gcTicker     *time.Ticker
	gcStopCh     chan struct{}
	dataDir      string
	gcWg         sync.WaitGroup
	mu           sync.Mutex
	closed       bool
	gcEnabled    bool
}

// New opens the preference store and loads the stored values
func New(opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{
		// Set defaults
		gcEnabled: true,
		values:    observable.NewCell(Values{}, observable.WithEqual(valuesEqual)),
		lastError: observable.NewCell[error](nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var badgerOpts badger.Options
	if s.dataDir == "" {
		// No dataDir, use in-memory config
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
		// There is no value log to collect
		s.gcEnabled = false
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(s.dataDir, prefsDir)).
			WithValueLogFileSize(valueLogFileSize).
			WithMemTableSize(memTableSize).
			WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(newBadgerLogger(s.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}
	s.db = db
	if err := s.init(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if s.promRegistry != nil {
		s.metrics = newStoreMetrics(s.promRegistry)
	}
	values, err := s.load()
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	s.setValues(values)
	if s.gcEnabled {
		s.gcTicker = time.NewTicker(gcInterval)
		s.gcStopCh = make(chan struct{})
		s.gcWg.Add(1)
		go s.valueLogGc(s.gcTicker, s.gcStopCh)
	}
	return nil
}

func (s *Store) valueLogGc(t *time.Ticker, stop <-chan struct{}) {
	defer s.gcWg.Done()
	for {
		select {
		case <-t.C:
			for {
				err := s.db.RunValueLogGC(0.5)
				if err == nil {
					// Run it again if it just ran successfully
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					s.logger.Warn(
						fmt.Sprintf("value log GC failure: %s", err),
						"component", "prefs",
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

func (s *Store) load() (Values, error) {
	ret := Values{}
	prefix := []byte(keyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			key := bytes.TrimPrefix(item.KeyCopy(nil), prefix)
			ret[string(key)] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Save stores a single preference
func (s *Store) Save(key string, value string) {
	s.write(Values{key: value})
}

// SaveAll stores several preferences in one transaction. Either all of
// them are written or none is.
func (s *Store) SaveAll(values map[string]string) {
	s.write(values)
}

func (s *Store) write(values Values) {
	if len(values) == 0 {
		return
	}
	keys := slices.Sorted(maps.Keys(values))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.fail(fmt.Errorf("saving preferences %v: %w", keys, ErrStoreClosed))
		return
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for key, value := range values {
			if err := txn.Set(dbKey(key), []byte(value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.fail(fmt.Errorf("saving preferences %v: %w", keys, err))
		return
	}
	if s.metrics != nil {
		s.metrics.writes.Inc()
	}
	// Publish while still holding the lock so the cell follows commit order
	next := maps.Clone(s.values.Get())
	if next == nil {
		next = Values{}
	}
	maps.Copy(next, values)
	s.setValues(next)
}

// Get returns a stored preference
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false
	}
	var ret string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		ret = string(val)
		return nil
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Error(
				"failed to read preference",
				"component", "prefs",
				"key", key,
				"error", err,
			)
		}
		return "", false
	}
	return ret, true
}

// Observe returns a live view of every stored preference
func (s *Store) Observe() *observable.Cell[Values] {
	return s.values
}

// LastError holds the most recent write failure
func (s *Store) LastError() *observable.Cell[error] {
	return s.lastError
}

// Clear removes every stored preference
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("clearing preferences: %w", err)
	}
	s.setValues(Values{})
	return nil
}

// Close stops background GC and closes the database. It is safe to call
// more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	// Stop GC ticker if it exists
	if s.gcTicker != nil {
		s.gcTicker.Stop()
		close(s.gcStopCh)
		// Wait for GC goroutine to finish
		s.gcWg.Wait()
		s.gcTicker = nil
	}
	return s.db.Close()
}

func (s *Store) setValues(values Values) {
	s.values.Set(values)
	if s.metrics != nil {
		s.metrics.keys.Set(float64(len(values)))
	}
}

func (s *Store) fail(err error) {
	if s.metrics != nil {
		s.metrics.writeErrors.Inc()
	}
	s.logger.Error(
		"failed to save preferences",
		"component", "prefs",
		"error", err,
	)
	s.lastError.Set(err)
}

func dbKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func valuesEqual(a, b Values) bool {
	return maps.Equal(a, b)
}
