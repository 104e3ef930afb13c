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

package models

import (
	"time"

	"github.com/blinklabs-io/civicprep/civic"
)

// Election is a row of the local election mirror. The remote-owned columns
// are refreshed from the API; Saved and Deleted belong to the user.
type Election struct {
	ID          int64     `gorm:"primarykey;autoIncrement:false"`
	Name        string    `gorm:"not null"`
	ElectionDay time.Time `gorm:"index"`
	DivisionID  string
	Country     string
	State       string
	Saved       bool `gorm:"not null;index"`
	Deleted     bool `gorm:"not null;index"`
}

func (Election) TableName() string {
	return "election"
}

// ElectionTombstone remembers the id of a purged election that the user
// deleted, so a later sync does not bring it back
type ElectionTombstone struct {
	ID int64 `gorm:"primarykey;autoIncrement:false"`
}

func (ElectionTombstone) TableName() string {
	return "election_tombstone"
}

// RemoteColumns are the columns owned by the civic information API
var RemoteColumns = []string{
	"name",
	"election_day",
	"division_id",
	"country",
	"state",
}

// ElectionFromCivic converts an API election into a row with both flags
// cleared
func ElectionFromCivic(e civic.Election) Election {
	return Election{
		ID:          e.ID,
		Name:        e.Name,
		ElectionDay: e.ElectionDay.UTC(),
		DivisionID:  e.Division.ID,
		Country:     e.Division.Country,
		State:       e.Division.State,
	}
}

// Civic returns the API view of the row
func (e Election) Civic() civic.Election {
	return civic.Election{
		ID:          e.ID,
		Name:        e.Name,
		ElectionDay: e.ElectionDay,
		Division: civic.Division{
			ID:      e.DivisionID,
			Country: e.Country,
			State:   e.State,
		},
	}
}

// Division returns the governing division of the election
func (e Election) Division() civic.Division {
	return civic.Division{
		ID:      e.DivisionID,
		Country: e.Country,
		State:   e.State,
	}
}

// SameRemote reports whether both rows carry the same API-owned data
func (e Election) SameRemote(other Election) bool {
	return e.ID == other.ID &&
		e.Name == other.Name &&
		e.ElectionDay.Equal(other.ElectionDay) &&
		e.DivisionID == other.DivisionID &&
		e.Country == other.Country &&
		e.State == other.State
}

// Equal compares all columns, using time equality for the election day
func (e Election) Equal(other Election) bool {
	return e.SameRemote(other) &&
		e.Saved == other.Saved &&
		e.Deleted == other.Deleted
}
