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

package civic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ElectionDayLayout is the wire format of an election day
const ElectionDayLayout = "2006-01-02"

// Election is an election as published by the civic information API
type Election struct {
	ID          int64
	Name        string
	ElectionDay time.Time
	Division    Division
}

type electionJSON struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	ElectionDay   string      `json:"electionDay"`
	OcdDivisionID string      `json:"ocdDivisionId"`
}

// UnmarshalJSON accepts the election id as either a JSON string or number
func (e *Election) UnmarshalJSON(data []byte) error {
	var raw electionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var id int64
	if raw.ID != "" {
		var err error
		id, err = raw.ID.Int64()
		if err != nil {
			return fmt.Errorf("parsing election id %q: %w", raw.ID, err)
		}
	}
	var day time.Time
	if raw.ElectionDay != "" {
		var err error
		day, err = time.Parse(ElectionDayLayout, raw.ElectionDay)
		if err != nil {
			return fmt.Errorf(
				"parsing election day %q: %w",
				raw.ElectionDay,
				err,
			)
		}
	}
	*e = Election{
		ID:          id,
		Name:        raw.Name,
		ElectionDay: day,
		Division:    ParseDivision(raw.OcdDivisionID),
	}
	return nil
}

// MarshalJSON writes the same shape the API returns
func (e Election) MarshalJSON() ([]byte, error) {
	raw := electionJSON{
		ID:            json.Number(strconv.FormatInt(e.ID, 10)),
		Name:          e.Name,
		OcdDivisionID: e.Division.ID,
	}
	if !e.ElectionDay.IsZero() {
		raw.ElectionDay = e.ElectionDay.Format(ElectionDayLayout)
	}
	return json.Marshal(raw)
}

// Channel is a social media account of an official
type Channel struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Official is an elected official
type Official struct {
	Name     string    `json:"name"`
	Address  []Address `json:"address,omitempty"`
	Party    string    `json:"party,omitempty"`
	Phones   []string  `json:"phones,omitempty"`
	URLs     []string  `json:"urls,omitempty"`
	Emails   []string  `json:"emails,omitempty"`
	PhotoURL string    `json:"photoUrl,omitempty"`
	Channels []Channel `json:"channels,omitempty"`
}

// Office is a public office. OfficialIndices refer to the officials list of
// the same response.
type Office struct {
	Name            string   `json:"name"`
	DivisionID      string   `json:"divisionId"`
	Levels          []string `json:"levels,omitempty"`
	Roles           []string `json:"roles,omitempty"`
	OfficialIndices []int    `json:"officialIndices"`
}

// RepresentativesResponse is the raw body of a representatives lookup
type RepresentativesResponse struct {
	NormalizedInput *Address   `json:"normalizedInput,omitempty"`
	Offices         []Office   `json:"offices"`
	Officials       []Official `json:"officials"`
}

// PollingLocation is a polling place, early vote site or drop off location
type PollingLocation struct {
	Address      Address `json:"address"`
	Notes        string  `json:"notes,omitempty"`
	PollingHours string  `json:"pollingHours,omitempty"`
}

// Contest is a race on the ballot
type Contest struct {
	Type   string `json:"type"`
	Office string `json:"office,omitempty"`
}

// AdministrationBody is the body administering an election in a region
type AdministrationBody struct {
	Name                    string   `json:"name,omitempty"`
	ElectionInfoURL         string   `json:"electionInfoUrl,omitempty"`
	VotingLocationFinderURL string   `json:"votingLocationFinderUrl,omitempty"`
	BallotInfoURL           string   `json:"ballotInfoUrl,omitempty"`
	CorrespondenceAddress   *Address `json:"correspondenceAddress,omitempty"`
}

// AdministrationRegion is a state or local region with its election
// administration body
type AdministrationRegion struct {
	Name                       string             `json:"name"`
	ElectionAdministrationBody AdministrationBody `json:"electionAdministrationBody"`
}

// VoterInfo is the voter information for one election and address
type VoterInfo struct {
	Election         Election               `json:"election"`
	NormalizedInput  *Address               `json:"normalizedInput,omitempty"`
	PollingLocations []PollingLocation      `json:"pollingLocations,omitempty"`
	EarlyVoteSites   []PollingLocation      `json:"earlyVoteSites,omitempty"`
	DropOffLocations []PollingLocation      `json:"dropOffLocations,omitempty"`
	Contests         []Contest              `json:"contests,omitempty"`
	State            []AdministrationRegion `json:"state,omitempty"`
}

func (v *VoterInfo) firstBodyURL(fn func(AdministrationBody) string) string {
	if v == nil {
		return ""
	}
	for _, region := range v.State {
		if u := fn(region.ElectionAdministrationBody); u != "" {
			return u
		}
	}
	return ""
}

// ElectionInfoURL returns the first election information URL of any region
func (v *VoterInfo) ElectionInfoURL() string {
	return v.firstBodyURL(func(b AdministrationBody) string {
		return b.ElectionInfoURL
	})
}

// VotingLocationFinderURL returns the first voting location finder URL of
// any region
func (v *VoterInfo) VotingLocationFinderURL() string {
	return v.firstBodyURL(func(b AdministrationBody) string {
		return b.VotingLocationFinderURL
	})
}

// BallotInfoURL returns the first ballot information URL of any region
func (v *VoterInfo) BallotInfoURL() string {
	return v.firstBodyURL(func(b AdministrationBody) string {
		return b.BallotInfoURL
	})
}

// CorrespondenceAddress returns the first correspondence address of any
// region, or nil
func (v *VoterInfo) CorrespondenceAddress() *Address {
	if v == nil {
		return nil
	}
	for _, region := range v.State {
		if a := region.ElectionAdministrationBody.CorrespondenceAddress; a != nil {
			return a
		}
	}
	return nil
}
