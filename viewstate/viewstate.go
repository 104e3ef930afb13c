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

// Package viewstate holds the observable state behind the election and
// representative screens. Every operation reports failures twice: the
// error is returned to the caller and also stored in a LastError cell.
// Published state is left as it was when an operation fails.
package viewstate

import (
	"context"
	"io"
	"log/slog"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/observable"
	"github.com/blinklabs-io/civicprep/prefs"
)

// CivicAPI is the subset of the civic client used by the view state
type CivicAPI interface {
	Elections(ctx context.Context) ([]civic.Election, error)
	VoterInfo(
		ctx context.Context,
		electionID int64,
		address string,
	) (*civic.VoterInfo, error)
	Representatives(
		ctx context.Context,
		address string,
	) ([]civic.Representative, error)
}

// ElectionStore is the subset of the election store used by ElectionState
type ElectionStore interface {
	WatchAllElections(
		ctx context.Context,
	) (*observable.Cell[[]models.Election], error)
	WatchSavedElections(
		ctx context.Context,
	) (*observable.Cell[[]models.Election], error)
	WatchElection(
		ctx context.Context,
		id int64,
	) (*observable.Cell[*models.Election], error)
	UpsertElection(election models.Election) error
	SyncElections(elections []models.Election) error
	SoftDeleteByID(id int64) error
}

// PreferenceStore is the subset of the preference store used by
// RepresentativeState
type PreferenceStore interface {
	Save(key string, value string)
	SaveAll(values map[string]string)
	Observe() *observable.Cell[prefs.Values]
}

var (
	_ CivicAPI        = (*civic.Client)(nil)
	_ PreferenceStore = (*prefs.Store)(nil)
)

// reporter logs failures and keeps the latest one in a cell
type reporter struct {
	logger    *slog.Logger
	component string
	lastError *observable.Cell[error]
}

func newReporter(logger *slog.Logger, component string) reporter {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return reporter{
		logger:    logger,
		component: component,
		lastError: observable.NewCell[error](nil),
	}
}

func (r reporter) fail(msg string, err error, args ...any) error {
	args = append(args, "component", r.component, "error", err)
	r.logger.Error(msg, args...)
	r.lastError.Set(err)
	return err
}
