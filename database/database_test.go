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

package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/civicprep/database"
	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/internal/test/testutil"
)

const (
	divisionUS = "ocd-division/country:us"
	divisionCA = "ocd-division/country:us/state:ca"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestUnknownMetadataPlugin(t *testing.T) {
	_, err := database.New(&database.Config{MetadataPlugin: "mysql"})
	require.ErrorIs(t, err, database.ErrUnknownMetadataPlugin)
}

func TestUpsertReplacesRow(t *testing.T) {
	db := newTestDatabase(t)
	e1 := testutil.Election(1, "first", 1, divisionUS)
	e1.Saved = true
	require.NoError(t, db.UpsertElection(e1))

	e2 := testutil.Election(1, "second", 2, divisionCA)
	require.NoError(t, db.UpsertElection(e2))

	all, err := db.AllElections()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].SameRemote(e2))
	// a plain upsert replaces the flags too
	require.False(t, all[0].Saved)
}

func TestUpsertElectionsBatchLastWins(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElections(nil))
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "a", 1, divisionUS),
		testutil.Election(2, "b", 2, divisionUS),
		testutil.Election(1, "a2", 3, divisionUS),
	}))
	all, err := db.AllElections()
	require.NoError(t, err)
	require.Len(t, all, 2)
	e, err := db.ElectionByID(1)
	require.NoError(t, err)
	require.Equal(t, "a2", e.Name)
}

func TestSavedAndDeletedViews(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "a", 3, divisionUS),
		testutil.Election(2, "b", 1, divisionUS),
		testutil.Election(3, "c", 2, divisionCA),
	}))
	require.NoError(t, db.SetSaved(1, true))
	require.NoError(t, db.SetSaved(3, true))
	require.NoError(t, db.SoftDeleteByID(3))

	all, err := db.AllElections()
	require.NoError(t, err)
	// ordered by election day
	require.Equal(t, []int64{2, 1}, testutil.ElectionIDs(all))

	saved, err := db.AllSavedElections()
	require.NoError(t, err)
	require.Equal(t, []int64{1}, testutil.ElectionIDs(saved))

	// the row survives a soft delete
	deleted, err := db.ElectionByID(3)
	require.NoError(t, err)
	require.True(t, deleted.Deleted)
	require.True(t, deleted.Saved)
}

func TestNotFound(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.ElectionByID(42)
	require.ErrorIs(t, err, database.ErrElectionNotFound)
	require.ErrorIs(t, db.SoftDeleteByID(42), database.ErrElectionNotFound)
	require.ErrorIs(t, db.SetSaved(42, true), database.ErrElectionNotFound)
}

func TestSyncPreservesFlags(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "a", 1, divisionUS),
		testutil.Election(2, "b", 2, divisionUS),
	}))
	require.NoError(t, db.SetSaved(1, true))
	require.NoError(t, db.SoftDeleteByID(2))

	require.NoError(t, db.SyncElections([]models.Election{
		testutil.Election(1, "a renamed", 5, divisionCA),
		testutil.Election(2, "b renamed", 6, divisionUS),
		testutil.Election(3, "c", 7, divisionUS),
	}))

	e1, err := db.ElectionByID(1)
	require.NoError(t, err)
	require.Equal(t, "a renamed", e1.Name)
	require.Equal(t, "ca", e1.State)
	require.True(t, e1.Saved)

	e2, err := db.ElectionByID(2)
	require.NoError(t, err)
	require.Equal(t, "b renamed", e2.Name)
	require.True(t, e2.Deleted)

	all, err := db.AllElections()
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, testutil.ElectionIDs(all))
}

func TestPurgeDeleted(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "a", 1, divisionUS),
		testutil.Election(2, "b", 2, divisionUS),
	}))
	require.NoError(t, db.SoftDeleteByID(2))
	n, err := db.PurgeDeleted()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	_, err = db.ElectionByID(2)
	require.True(t, errors.Is(err, database.ErrElectionNotFound))
	_, err = db.ElectionByID(1)
	require.NoError(t, err)
	n, err = db.PurgeDeleted()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSyncSkipsPurgedElections(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElections([]models.Election{
		testutil.Election(1, "a", 1, divisionUS),
		testutil.Election(2, "b", 2, divisionUS),
	}))
	require.NoError(t, db.SoftDeleteByID(1))
	n, err := db.PurgeDeleted()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, db.SyncElections([]models.Election{
		testutil.Election(1, "a again", 1, divisionUS),
		testutil.Election(2, "b", 2, divisionUS),
	}))
	_, err = db.ElectionByID(1)
	require.ErrorIs(t, err, database.ErrElectionNotFound)
	all, err := db.AllElections()
	require.NoError(t, err)
	require.Equal(t, []int64{2}, testutil.ElectionIDs(all))

	// an explicit upsert brings the election back
	require.NoError(t, db.UpsertElection(testutil.Election(1, "restored", 1, divisionUS)))
	require.NoError(t, db.SyncElections([]models.Election{
		testutil.Election(1, "renamed", 1, divisionUS),
	}))
	e, err := db.ElectionByID(1)
	require.NoError(t, err)
	require.Equal(t, "renamed", e.Name)
	require.False(t, e.Deleted)
}

func TestWatchAllElections(t *testing.T) {
	db := newTestDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cell, err := db.WatchAllElections(ctx)
	require.NoError(t, err)
	require.Empty(t, cell.Get())
	rec := testutil.Record(t, cell)

	require.NoError(t, db.UpsertElection(testutil.Election(1, "a", 1, divisionUS)))
	testutil.WaitForCondition(t, func() bool {
		return len(rec.Last()) == 1
	}, testutil.DefaultTimeout, "live view did not see the insert")

	require.NoError(t, db.SoftDeleteByID(1))
	testutil.WaitForCondition(t, func() bool {
		return len(rec.Last()) == 0
	}, testutil.DefaultTimeout, "live view did not see the delete")
}

func TestWatchSavedElections(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.UpsertElection(testutil.Election(1, "a", 1, divisionUS)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cell, err := db.WatchSavedElections(ctx)
	require.NoError(t, err)
	require.Empty(t, cell.Get())

	require.NoError(t, db.SetSaved(1, true))
	testutil.WaitForCondition(t, func() bool {
		return len(cell.Get()) == 1 && cell.Get()[0].Saved
	}, testutil.DefaultTimeout, "saved view did not update")
}

func TestWatchElection(t *testing.T) {
	db := newTestDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cell, err := db.WatchElection(ctx, 9)
	require.NoError(t, err)
	require.Nil(t, cell.Get())

	require.NoError(t, db.UpsertElection(testutil.Election(9, "nine", 9, divisionCA)))
	testutil.WaitForCondition(t, func() bool {
		e := cell.Get()
		return e != nil && e.Name == "nine"
	}, testutil.DefaultTimeout, "single row view did not see the insert")

	// unrelated writes do not republish an unchanged row
	rec := testutil.Record(t, cell)
	require.NoError(t, db.UpsertElection(testutil.Election(10, "ten", 10, divisionCA)))
	require.NoError(t, db.SetSaved(9, true))
	testutil.WaitForCondition(t, func() bool {
		e := cell.Get()
		return e != nil && e.Saved
	}, testutil.DefaultTimeout, "single row view did not see the flag")
	require.Equal(t, 2, rec.Len())
}

func TestWatchStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	reg := prometheus.NewRegistry()
	db, err := database.New(&database.Config{PromRegistry: reg})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cell, err := db.WatchAllElections(ctx)
	require.NoError(t, err)
	cancel()
	testutil.WaitForCondition(t, func() bool {
		err := promtestutil.GatherAndCompare(
			reg,
			strings.NewReader(`
# HELP civicprep_database_live_views active live election views
# TYPE civicprep_database_live_views gauge
civicprep_database_live_views 0
`),
			"civicprep_database_live_views",
		)
		return err == nil
	}, testutil.DefaultTimeout, "live view was not released")
	require.NoError(t, db.UpsertElection(testutil.Election(1, "a", 1, divisionUS)))
	all, err := db.AllElections()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Empty(t, cell.Get())
	require.NoError(t, db.Close())
}

func TestOnDiskPersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.UpsertElection(testutil.Election(5, "five", 5, divisionUS)))
	require.NoError(t, db.SetSaved(5, true))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	saved, err := db.AllSavedElections()
	require.NoError(t, err)
	require.Equal(t, []int64{5}, testutil.ElectionIDs(saved))
	require.Equal(t, dataDir, db.DataDir())
}
