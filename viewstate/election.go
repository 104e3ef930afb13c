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

package viewstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/observable"
)

// ElectionState backs the election list and detail screens
type ElectionState struct {
	ctx       context.Context
	store     ElectionStore
	client    CivicAPI
	reporter  reporter
	elections *observable.Cell[[]models.Election]
	saved     *observable.Cell[[]models.Election]
	election  *observable.Cell[*models.Election]
	voterInfo *observable.Cell[*civic.VoterInfo]
	url       *observable.Signal[string]

	selectMu     sync.Mutex
	selectedID   int64
	selected     bool
	selectCancel context.CancelFunc
	unobserve    func()
}

// NewElectionState opens the live election lists. They follow the store
// until ctx is done.
func NewElectionState(
	ctx context.Context,
	store ElectionStore,
	client CivicAPI,
	logger *slog.Logger,
) (*ElectionState, error) {
	s := &ElectionState{
		ctx:      ctx,
		store:    store,
		client:   client,
		reporter: newReporter(logger, "viewstate.election"),
		election: observable.NewCell[*models.Election](
			nil,
			observable.WithEqual(electionPtrEqual),
		),
		voterInfo: observable.NewCell[*civic.VoterInfo](nil),
		url:       observable.NewSignal[string](),
	}
	var err error
	s.elections, err = store.WatchAllElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("watching elections: %w", err)
	}
	s.saved, err = store.WatchSavedElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("watching saved elections: %w", err)
	}
	return s, nil
}

// Elections is the live list of elections that are not deleted
func (s *ElectionState) Elections() *observable.Cell[[]models.Election] {
	return s.elections
}

// SavedElections is the live list of saved elections
func (s *ElectionState) SavedElections() *observable.Cell[[]models.Election] {
	return s.saved
}

// Election is the selected election. It holds nil until an election is
// selected and while the selected id has no row.
func (s *ElectionState) Election() *observable.Cell[*models.Election] {
	return s.election
}

// VoterInfo holds the last voter info loaded
func (s *ElectionState) VoterInfo() *observable.Cell[*civic.VoterInfo] {
	return s.voterInfo
}

// URL carries links the screen should open. Each one is consumed once.
func (s *ElectionState) URL() *observable.Signal[string] {
	return s.url
}

// LastError holds the most recent failure
func (s *ElectionState) LastError() *observable.Cell[error] {
	return s.reporter.lastError
}

// SelectedID returns the selected election id
func (s *ElectionState) SelectedID() (int64, bool) {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()
	return s.selectedID, s.selected
}

// SelectElection makes id the selected election and follows its row.
// Selecting again replaces the previous lookup.
func (s *ElectionState) SelectElection(id int64) error {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()
	s.stopSelection()
	ctx, cancel := context.WithCancel(s.ctx)
	cell, err := s.store.WatchElection(ctx, id)
	if err != nil {
		cancel()
		return s.reporter.fail(
			"failed to select election",
			fmt.Errorf("selecting election %d: %w", id, err),
			"id", id,
		)
	}
	s.selectCancel = cancel
	s.selectedID = id
	s.selected = true
	s.unobserve = cell.Observe(func(e *models.Election) {
		s.election.Set(e)
	})
	return nil
}

// stopSelection must be called with selectMu held
func (s *ElectionState) stopSelection() {
	if s.unobserve != nil {
		s.unobserve()
		s.unobserve = nil
	}
	if s.selectCancel != nil {
		s.selectCancel()
		s.selectCancel = nil
	}
}

// ToggleSaved flips the saved flag on a copy of e and upserts it
func (s *ElectionState) ToggleSaved(e models.Election) error {
	e.Saved = !e.Saved
	if err := s.store.UpsertElection(e); err != nil {
		return s.reporter.fail(
			"failed to toggle saved election",
			fmt.Errorf("toggling saved election %d: %w", e.ID, err),
			"id", e.ID,
		)
	}
	return nil
}

// DeleteElection soft-deletes an election
func (s *ElectionState) DeleteElection(id int64) error {
	if err := s.store.SoftDeleteByID(id); err != nil {
		return s.reporter.fail(
			"failed to delete election",
			fmt.Errorf("deleting election %d: %w", id, err),
			"id", id,
		)
	}
	return nil
}

// LoadVoterInfo fetches the voter info for an election. The address is
// usually the election's division query. The last call to complete wins.
func (s *ElectionState) LoadVoterInfo(
	ctx context.Context,
	electionID int64,
	address string,
) error {
	info, err := s.client.VoterInfo(ctx, electionID, address)
	if err != nil {
		return s.reporter.fail(
			"failed to load voter info",
			err,
			"id", electionID,
		)
	}
	s.voterInfo.Set(info)
	return nil
}

// OpenURL asks the screen to open url. Empty links are ignored.
func (s *ElectionState) OpenURL(url string) {
	if url == "" {
		return
	}
	s.url.Emit(url)
}

// RefreshElections fetches the election list and merges it into the store.
// Saved and deleted flags are kept.
func (s *ElectionState) RefreshElections(ctx context.Context) (int, error) {
	remote, err := s.client.Elections(ctx)
	if err != nil {
		return 0, s.reporter.fail("failed to refresh elections", err)
	}
	rows := make([]models.Election, 0, len(remote))
	for _, e := range remote {
		rows = append(rows, models.ElectionFromCivic(e))
	}
	if err := s.store.SyncElections(rows); err != nil {
		return 0, s.reporter.fail("failed to store elections", err)
	}
	return len(rows), nil
}

// Close stops following the selected election
func (s *ElectionState) Close() {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()
	s.stopSelection()
}

func electionPtrEqual(a, b *models.Election) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
