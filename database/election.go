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

package database

import (
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/event"
)

const electionOrder = "election_day, id"

// UpsertElection inserts an election or replaces every column of the row
// with the same id, flags included
func (d *Database) UpsertElection(election models.Election) error {
	return d.UpsertElections([]models.Election{election})
}

// UpsertElections is the batch form of UpsertElection. When the batch
// holds the same id more than once, the last entry wins. An explicit
// upsert also forgets a purge tombstone for the id.
func (d *Database) UpsertElections(elections []models.Election) error {
	rows := dedupeElections(elections)
	if len(rows) == 0 {
		return nil
	}
	ids := electionIDs(rows)
	err := d.metadata.Transaction(func(txn *gorm.DB) error {
		if result := txn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rows); result.Error != nil {
			return result.Error
		}
		return txn.Where("id IN ?", ids).
			Delete(&models.ElectionTombstone{}).Error
	})
	if err != nil {
		return fmt.Errorf("upserting elections: %w", err)
	}
	d.publishChange(event.ElectionOpUpsert, ids...)
	return nil
}

// SyncElections merges elections fetched from the API. New rows are
// inserted as given; existing rows only have their API-owned columns
// refreshed, so the saved and deleted flags survive a refetch. Ids of
// purged elections are skipped.
func (d *Database) SyncElections(elections []models.Election) error {
	rows := dedupeElections(elections)
	if len(rows) == 0 {
		return nil
	}
	var synced []int64
	err := d.metadata.Transaction(func(txn *gorm.DB) error {
		var purged []int64
		if result := txn.Model(&models.ElectionTombstone{}).
			Where("id IN ?", electionIDs(rows)).
			Pluck("id", &purged); result.Error != nil {
			return result.Error
		}
		rows = slices.DeleteFunc(rows, func(e models.Election) bool {
			return slices.Contains(purged, e.ID)
		})
		if len(rows) == 0 {
			return nil
		}
		if result := txn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(models.RemoteColumns),
		}).Create(&rows); result.Error != nil {
			return result.Error
		}
		synced = electionIDs(rows)
		return nil
	})
	if err != nil {
		return fmt.Errorf("syncing elections: %w", err)
	}
	if len(synced) > 0 {
		d.publishChange(event.ElectionOpSync, synced...)
	}
	return nil
}

// AllElections returns every election that has not been deleted
func (d *Database) AllElections() ([]models.Election, error) {
	var ret []models.Election
	result := d.metadata.DB().
		Where("deleted = ?", false).
		Order(electionOrder).
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("listing elections: %w", result.Error)
	}
	return ret, nil
}

// AllSavedElections returns the saved elections that have not been deleted
func (d *Database) AllSavedElections() ([]models.Election, error) {
	var ret []models.Election
	result := d.metadata.DB().
		Where("saved = ? AND deleted = ?", true, false).
		Order(electionOrder).
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("listing saved elections: %w", result.Error)
	}
	return ret, nil
}

// ElectionByID returns the election with the given id, including a
// soft-deleted one
func (d *Database) ElectionByID(id int64) (*models.Election, error) {
	var ret models.Election
	result := d.metadata.DB().Where("id = ?", id).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("election %d: %w", id, ErrElectionNotFound)
		}
		return nil, fmt.Errorf("getting election %d: %w", id, result.Error)
	}
	return &ret, nil
}

// SoftDeleteByID flags an election as deleted and keeps the row
func (d *Database) SoftDeleteByID(id int64) error {
	if err := d.updateFlag(id, "deleted", true); err != nil {
		return fmt.Errorf("deleting election: %w", err)
	}
	d.publishChange(event.ElectionOpDelete, id)
	return nil
}

// SetSaved writes only the saved flag of an election
func (d *Database) SetSaved(id int64, saved bool) error {
	if err := d.updateFlag(id, "saved", saved); err != nil {
		return fmt.Errorf("saving election: %w", err)
	}
	d.publishChange(event.ElectionOpSaved, id)
	return nil
}

func (d *Database) updateFlag(id int64, column string, value bool) error {
	result := d.metadata.DB().
		Model(&models.Election{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("election %d: %w", id, ErrElectionNotFound)
	}
	return nil
}

// PurgeDeleted removes soft-deleted rows and returns how many were
// removed. Each purged id keeps a tombstone so SyncElections does not
// insert it again.
func (d *Database) PurgeDeleted() (int64, error) {
	var purged int64
	err := d.metadata.Transaction(func(txn *gorm.DB) error {
		var ids []int64
		if result := txn.Model(&models.Election{}).
			Where("deleted = ?", true).
			Pluck("id", &ids); result.Error != nil {
			return result.Error
		}
		if len(ids) == 0 {
			return nil
		}
		tombstones := make([]models.ElectionTombstone, 0, len(ids))
		for _, id := range ids {
			tombstones = append(tombstones, models.ElectionTombstone{ID: id})
		}
		if result := txn.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&tombstones); result.Error != nil {
			return result.Error
		}
		result := txn.Where("id IN ?", ids).Delete(&models.Election{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purging deleted elections: %w", err)
	}
	if purged > 0 {
		d.publishChange(event.ElectionOpPurge)
	}
	return purged, nil
}

// dedupeElections keeps the last entry for each id, at the position of
// its first occurrence
func dedupeElections(elections []models.Election) []models.Election {
	idx := make(map[int64]int, len(elections))
	ret := make([]models.Election, 0, len(elections))
	for _, e := range elections {
		if i, ok := idx[e.ID]; ok {
			ret[i] = e
			continue
		}
		idx[e.ID] = len(ret)
		ret = append(ret, e)
	}
	return ret
}

func electionIDs(elections []models.Election) []int64 {
	ret := make([]int64, 0, len(elections))
	for _, e := range elections {
		ret = append(ret, e.ID)
	}
	return ret
}
