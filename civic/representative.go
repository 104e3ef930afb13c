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

// Representative pairs an official with the office they hold
type Representative struct {
	Official Official `json:"official"`
	Office   Office   `json:"office"`
}

// Representatives resolves the office's official indices against officials.
// Out of range indices are skipped and counted in the second return value.
func (o Office) Representatives(officials []Official) ([]Representative, int) {
	ret := make([]Representative, 0, len(o.OfficialIndices))
	skipped := 0
	for _, idx := range o.OfficialIndices {
		if idx < 0 || idx >= len(officials) {
			skipped++
			continue
		}
		ret = append(ret, Representative{
			Official: officials[idx],
			Office:   o,
		})
	}
	return ret, skipped
}

// FlattenRepresentatives expands every office into its representatives, in
// office order. An official referenced by several offices appears once per
// office.
func FlattenRepresentatives(
	offices []Office,
	officials []Official,
) ([]Representative, int) {
	var ret []Representative
	skipped := 0
	for _, office := range offices {
		reps, n := office.Representatives(officials)
		ret = append(ret, reps...)
		skipped += n
	}
	return ret, skipped
}
