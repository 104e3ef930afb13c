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

import "strings"

const (
	countryDelimiter = "country:"
	stateDelimiter   = "state:"
)

// Division is a political geography identified by an OCD division id such
// as "ocd-division/country:us/state:ca"
type Division struct {
	ID      string `json:"id"`
	Country string `json:"country"`
	State   string `json:"state"`
}

// ParseDivision extracts the country and state segments of an OCD division
// id. Missing segments are left empty.
func ParseDivision(ocdDivisionID string) Division {
	return Division{
		ID:      ocdDivisionID,
		Country: divisionSegment(ocdDivisionID, countryDelimiter),
		State:   divisionSegment(ocdDivisionID, stateDelimiter),
	}
}

func divisionSegment(id string, delimiter string) string {
	_, after, found := strings.Cut(id, delimiter)
	if !found {
		return ""
	}
	value, _, _ := strings.Cut(after, "/")
	return value
}

// Query returns the address string used to look up voter information for
// the division: the country alone, or "<country> - <state>"
func (d Division) Query() string {
	if d.State == "" {
		return d.Country
	}
	return d.Country + " - " + d.State
}
