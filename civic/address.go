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

// Preference keys of the five address fields
const (
	KeyLine1 = "address.line1.key"
	KeyLine2 = "address.line2.key"
	KeyCity  = "city.key"
	KeyState = "state.key"
	KeyZip   = "zip.key"
)

// AddressKeys lists the address preference keys in display order
var AddressKeys = []string{KeyLine1, KeyLine2, KeyCity, KeyState, KeyZip}

// Address is a postal address. No field is validated.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// FormattedString renders the address as used for API lookups:
// line1, an optional line2, then "city, state zip", separated by newlines
func (a Address) FormattedString() string {
	var sb strings.Builder
	sb.WriteString(a.Line1)
	sb.WriteString("\n")
	if a.Line2 != "" {
		sb.WriteString(a.Line2)
		sb.WriteString("\n")
	}
	sb.WriteString(a.City)
	sb.WriteString(", ")
	sb.WriteString(a.State)
	sb.WriteString(" ")
	sb.WriteString(a.Zip)
	return sb.String()
}

// IsEmpty reports whether every field is empty
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Fields maps each address preference key to its value
func (a Address) Fields() map[string]string {
	return map[string]string{
		KeyLine1: a.Line1,
		KeyLine2: a.Line2,
		KeyCity:  a.City,
		KeyState: a.State,
		KeyZip:   a.Zip,
	}
}

// Field returns the value stored under an address preference key
func (a Address) Field(key string) (string, bool) {
	switch key {
	case KeyLine1:
		return a.Line1, true
	case KeyLine2:
		return a.Line2, true
	case KeyCity:
		return a.City, true
	case KeyState:
		return a.State, true
	case KeyZip:
		return a.Zip, true
	}
	return "", false
}

// WithField returns a copy of the address with one field replaced. Unknown
// keys leave the address unchanged.
func (a Address) WithField(key string, value string) Address {
	switch key {
	case KeyLine1:
		a.Line1 = value
	case KeyLine2:
		a.Line2 = value
	case KeyCity:
		a.City = value
	case KeyState:
		a.State = value
	case KeyZip:
		a.Zip = value
	}
	return a
}

// AddressFromFields builds an address from preference values. Missing keys
// yield empty fields.
func AddressFromFields(fields map[string]string) Address {
	return Address{
		Line1: fields[KeyLine1],
		Line2: fields[KeyLine2],
		City:  fields[KeyCity],
		State: fields[KeyState],
		Zip:   fields[KeyZip],
	}
}

// IsAddressKey reports whether key is one of the address preference keys
func IsAddressKey(key string) bool {
	_, ok := Address{}.Field(key)
	return ok
}
