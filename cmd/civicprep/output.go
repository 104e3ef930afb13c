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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes tab separated rows as aligned columns
func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// electionView is the printed form of an election row
type electionView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ElectionDay string `json:"electionDay"`
	Division    string `json:"ocdDivisionId"`
	Query       string `json:"divisionQuery"`
	Saved       bool   `json:"saved"`
	Deleted     bool   `json:"deleted,omitempty"`
}

func newElectionView(e models.Election) electionView {
	return electionView{
		ID:          e.ID,
		Name:        e.Name,
		ElectionDay: e.ElectionDay.Format(civic.ElectionDayLayout),
		Division:    e.DivisionID,
		Query:       e.Division().Query(),
		Saved:       e.Saved,
		Deleted:     e.Deleted,
	}
}

func printElections(w io.Writer, asJSON bool, elections []models.Election) error {
	views := make([]electionView, 0, len(elections))
	for _, e := range elections {
		views = append(views, newElectionView(e))
	}
	if asJSON {
		return printJSON(w, views)
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.ID),
			v.ElectionDay,
			v.Name,
			v.Query,
			yesNo(v.Saved),
		})
	}
	return printTable(w, []string{"ID", "DAY", "NAME", "DIVISION", "SAVED"}, rows)
}

func printElection(w io.Writer, asJSON bool, e models.Election) error {
	v := newElectionView(e)
	if asJSON {
		return printJSON(w, v)
	}
	return printTable(w, []string{"FIELD", "VALUE"}, [][]string{
		{"id", fmt.Sprintf("%d", v.ID)},
		{"name", v.Name},
		{"day", v.ElectionDay},
		{"division", v.Division},
		{"query", v.Query},
		{"saved", yesNo(v.Saved)},
		{"deleted", yesNo(v.Deleted)},
	})
}

func printAddress(w io.Writer, asJSON bool, addr civic.Address) error {
	if asJSON {
		return printJSON(w, addr)
	}
	return printTable(w, []string{"FIELD", "VALUE"}, [][]string{
		{"line1", addr.Line1},
		{"line2", addr.Line2},
		{"city", addr.City},
		{"state", addr.State},
		{"zip", addr.Zip},
	})
}

func printRepresentatives(
	w io.Writer,
	asJSON bool,
	reps []civic.Representative,
) error {
	if asJSON {
		return printJSON(w, reps)
	}
	rows := make([][]string, 0, len(reps))
	for _, r := range reps {
		rows = append(rows, []string{
			r.Office.Name,
			r.Official.Name,
			r.Official.Party,
		})
	}
	return printTable(w, []string{"OFFICE", "OFFICIAL", "PARTY"}, rows)
}

func printVoterInfo(w io.Writer, asJSON bool, info *civic.VoterInfo) error {
	if info == nil {
		return nil
	}
	if asJSON {
		return printJSON(w, info)
	}
	rows := [][]string{
		{"election", info.Election.Name},
		{"election info", info.ElectionInfoURL()},
		{"voting locations", info.VotingLocationFinderURL()},
		{"ballot info", info.BallotInfoURL()},
	}
	if addr := info.CorrespondenceAddress(); addr != nil {
		rows = append(rows, []string{"correspondence", addr.FormattedString()})
	}
	for _, loc := range info.PollingLocations {
		rows = append(rows, []string{"polling location", loc.Address.FormattedString()})
	}
	return printTable(w, []string{"FIELD", "VALUE"}, rows)
}
