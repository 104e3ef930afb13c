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

package viewstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database"
	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/internal/test/testutil"
	"github.com/blinklabs-io/civicprep/viewstate"
)

const (
	divisionUS = "ocd-division/country:us"
	divisionCA = "ocd-division/country:us/state:ca"
)

func newElectionState(
	t *testing.T,
	client viewstate.CivicAPI,
) (*viewstate.ElectionState, *database.Database) {
	t.Helper()
	db, err := database.New(nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	s, err := viewstate.NewElectionState(ctx, db, client, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		cancel()
		require.NoError(t, db.Close())
	})
	return s, db
}

func TestInsertToggleAndListSaved(t *testing.T) {
	s, db := newElectionState(t, &fakeCivic{})
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "one", 1, divisionUS),
		testutil.Election(2, "two", 2, divisionCA),
	}))
	testutil.WaitForCondition(t, func() bool {
		return len(s.Elections().Get()) == 2
	}, testutil.DefaultTimeout, "elections were not published")
	require.ElementsMatch(t, []int64{1, 2}, testutil.ElectionIDs(s.Elections().Get()))

	require.NoError(t, s.ToggleSaved(s.Elections().Get()[0]))
	testutil.WaitForCondition(t, func() bool {
		return len(s.SavedElections().Get()) == 1
	}, testutil.DefaultTimeout, "saved elections were not published")
	require.Equal(t, []int64{1}, testutil.ElectionIDs(s.SavedElections().Get()))

	// toggling again unsaves
	e, err := db.ElectionByID(1)
	require.NoError(t, err)
	require.NoError(t, s.ToggleSaved(*e))
	testutil.WaitForCondition(t, func() bool {
		return len(s.SavedElections().Get()) == 0
	}, testutil.DefaultTimeout, "unsave was not published")
}

func TestSelectElection(t *testing.T) {
	s, db := newElectionState(t, &fakeCivic{})
	require.Nil(t, s.Election().Get())
	_, ok := s.SelectedID()
	require.False(t, ok)

	require.NoError(t, s.SelectElection(7))
	require.Nil(t, s.Election().Get())
	require.NoError(t, db.UpsertElection(testutil.Election(7, "seven", 7, divisionUS)))
	testutil.WaitForCondition(t, func() bool {
		e := s.Election().Get()
		return e != nil && e.ID == 7
	}, testutil.DefaultTimeout, "selected election was not published")

	require.NoError(t, db.UpsertElection(testutil.Election(8, "eight", 8, divisionCA)))
	require.NoError(t, s.SelectElection(8))
	require.Equal(t, int64(8), s.Election().Get().ID)
	id, ok := s.SelectedID()
	require.True(t, ok)
	require.Equal(t, int64(8), id)

	// the previous selection no longer drives the cell
	require.NoError(t, db.SetSaved(7, true))
	require.NoError(t, db.SetSaved(8, true))
	testutil.WaitForCondition(t, func() bool {
		return s.Election().Get().Saved
	}, testutil.DefaultTimeout, "selected election flag was not published")
	require.Equal(t, int64(8), s.Election().Get().ID)
}

func TestDeleteElection(t *testing.T) {
	s, db := newElectionState(t, &fakeCivic{})
	require.NoError(t, db.UpsertElection(testutil.Election(1, "one", 1, divisionUS)))
	testutil.WaitForCondition(t, func() bool {
		return len(s.Elections().Get()) == 1
	}, testutil.DefaultTimeout, "election was not published")
	require.NoError(t, s.DeleteElection(1))
	testutil.WaitForCondition(t, func() bool {
		return len(s.Elections().Get()) == 0
	}, testutil.DefaultTimeout, "delete was not published")

	err := s.DeleteElection(99)
	require.ErrorIs(t, err, database.ErrElectionNotFound)
	require.ErrorIs(t, s.LastError().Get(), database.ErrElectionNotFound)
}

func TestLoadVoterInfo(t *testing.T) {
	client := &fakeCivic{}
	s, _ := newElectionState(t, client)
	division := civic.ParseDivision(divisionCA)
	require.NoError(t, s.LoadVoterInfo(context.Background(), 3, division.Query()))
	require.Equal(t, "us - ca", client.lastAddress())
	require.Equal(t, int64(3), s.VoterInfo().Get().Election.ID)

	// a failure keeps the stale voter info
	client.setErr(errRemote)
	err := s.LoadVoterInfo(context.Background(), 4, "us")
	require.ErrorIs(t, err, errRemote)
	require.ErrorIs(t, s.LastError().Get(), errRemote)
	require.Equal(t, int64(3), s.VoterInfo().Get().Election.ID)
}

// The slower of two overlapping lookups overwrites the faster one because
// the last call to complete wins.
func TestLoadVoterInfoLastCompletionWins(t *testing.T) {
	release := make(chan struct{})
	client := &fakeCivic{
		voterInfoFn: func(ctx context.Context, id int64, address string) (*civic.VoterInfo, error) {
			if id == 1 {
				<-release
			}
			return &civic.VoterInfo{Election: civic.Election{ID: id}}, nil
		},
	}
	s, _ := newElectionState(t, client)
	slow := make(chan error, 1)
	go func() {
		slow <- s.LoadVoterInfo(context.Background(), 1, "us")
	}()
	require.NoError(t, s.LoadVoterInfo(context.Background(), 2, "us"))
	require.Equal(t, int64(2), s.VoterInfo().Get().Election.ID)
	close(release)
	require.NoError(t, testutil.RequireReceive(t, slow, testutil.DefaultTimeout, "slow lookup did not finish"))
	require.Equal(t, int64(1), s.VoterInfo().Get().Election.ID)
}

func TestOpenURLConsumedOnce(t *testing.T) {
	s, _ := newElectionState(t, &fakeCivic{})
	s.OpenURL("")
	require.False(t, s.URL().Pending())
	s.OpenURL("https://vote.example.org")
	url, ok := s.URL().Consume()
	require.True(t, ok)
	require.Equal(t, "https://vote.example.org", url)
	_, ok = s.URL().Consume()
	require.False(t, ok)
}

func TestRefreshElectionsKeepsFlags(t *testing.T) {
	client := &fakeCivic{
		elections: []civic.Election{
			{
				ID:          1,
				Name:        "General",
				ElectionDay: time.Date(2030, time.November, 5, 0, 0, 0, 0, time.UTC),
				Division:    civic.ParseDivision(divisionUS),
			},
			{
				ID:          2,
				Name:        "Primary",
				ElectionDay: time.Date(2030, time.June, 4, 0, 0, 0, 0, time.UTC),
				Division:    civic.ParseDivision(divisionCA),
			},
		},
	}
	s, db := newElectionState(t, client)
	require.NoError(t, db.UpsertElection(testutil.Election(1, "old", 1, divisionUS)))
	require.NoError(t, db.SetSaved(1, true))

	n, err := s.RefreshElections(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	e, err := db.ElectionByID(1)
	require.NoError(t, err)
	require.Equal(t, "General", e.Name)
	require.True(t, e.Saved)
	testutil.WaitForCondition(t, func() bool {
		return len(s.Elections().Get()) == 2
	}, testutil.DefaultTimeout, "refreshed elections were not published")
	// ordered by election day
	require.Equal(t, []int64{2, 1}, testutil.ElectionIDs(s.Elections().Get()))

	client.setErr(errRemote)
	_, err = s.RefreshElections(context.Background())
	require.ErrorIs(t, err, errRemote)
	require.Len(t, s.Elections().Get(), 2)
}
