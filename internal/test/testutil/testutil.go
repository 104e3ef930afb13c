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

// Package testutil provides shared test helpers: polling waits, channel
// assertions, observable recorders and election fixtures.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/database/models"
	"github.com/blinklabs-io/civicprep/observable"
)

// DefaultTimeout bounds waits on asynchronous updates in tests
const DefaultTimeout = 2 * time.Second

// WaitForCondition polls the given condition function until it returns true
// or the timeout expires
func WaitForCondition(
	t *testing.T,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(
		t,
		condition,
		timeout,
		10*time.Millisecond,
		msg,
	)
}

// RequireReceive waits for a value on the given channel or fails the test
// if the timeout expires
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
		var zero T
		return zero // unreachable
	}
}

// Recorder collects every value an observable cell publishes
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
	cancel func()
}

// Record observes cell until the test ends
func Record[T any](t *testing.T, cell *observable.Cell[T]) *Recorder[T] {
	t.Helper()
	r := &Recorder[T]{}
	r.cancel = cell.Observe(func(v T) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.values = append(r.values, v)
	})
	t.Cleanup(r.cancel)
	return r
}

// Values returns a copy of the recorded values
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]T, len(r.values))
	copy(ret, r.values)
	return ret
}

// Len returns the number of recorded values
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value
func (r *Recorder[T]) Last() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if len(r.values) == 0 {
		return zero
	}
	return r.values[len(r.values)-1]
}

// Election returns an election row on the given day of 2030 in the given
// OCD division
func Election(id int64, name string, day int, ocdDivisionID string) models.Election {
	return models.ElectionFromCivic(civic.Election{
		ID:          id,
		Name:        name,
		ElectionDay: time.Date(2030, time.January, day, 0, 0, 0, 0, time.UTC),
		Division:    civic.ParseDivision(ocdDivisionID),
	})
}

// ElectionIDs returns the ids of elections in order
func ElectionIDs(elections []models.Election) []int64 {
	ret := make([]int64, 0, len(elections))
	for _, e := range elections {
		ret = append(ret, e.ID)
	}
	return ret
}
