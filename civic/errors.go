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
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAddress is returned for lookups whose address has no content
// other than separators
var ErrEmptyAddress = errors.New("address is empty")

// APIError is returned when the API answers with a non-200 status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// googleErrorEnvelope is the error body used by Google APIs
type googleErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	var envelope googleErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil &&
		envelope.Error.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    envelope.Error.Message,
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

func isBlankAddress(address string) bool {
	return strings.Trim(address, " ,\n\t") == ""
}
