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

package viewstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/observable"
	"github.com/blinklabs-io/civicprep/prefs"
)

// ErrUnknownAddressField is returned by UpdateField for a key that is not
// one of the address preference keys
var ErrUnknownAddressField = errors.New("unknown address field")

// RepresentativeState backs the representative lookup screen. The address
// cell is the only copy of the address; the field accessors read from it.
type RepresentativeState struct {
	client          CivicAPI
	prefs           PreferenceStore
	reporter        reporter
	address         *observable.Cell[civic.Address]
	representatives *observable.Cell[[]civic.Representative]
	closeOnce       sync.Once
	unobserve       func()
}

// NewRepresentativeState restores the address from prefs and keeps
// following it. prefs may be nil, in which case nothing is persisted.
func NewRepresentativeState(
	client CivicAPI,
	prefStore PreferenceStore,
	logger *slog.Logger,
) *RepresentativeState {
	s := &RepresentativeState{
		client:   client,
		prefs:    prefStore,
		reporter: newReporter(logger, "viewstate.representative"),
		address: observable.NewCell(
			civic.Address{},
			observable.WithEqual(observable.Comparable[civic.Address]()),
		),
		representatives: observable.NewCell[[]civic.Representative](nil),
	}
	if prefStore != nil {
		s.unobserve = prefStore.Observe().Observe(func(values prefs.Values) {
			s.address.Set(civic.AddressFromFields(values))
		})
	}
	return s
}

// Address is the current address
func (s *RepresentativeState) Address() *observable.Cell[civic.Address] {
	return s.address
}

func (s *RepresentativeState) Line1() string { return s.address.Get().Line1 }
func (s *RepresentativeState) Line2() string { return s.address.Get().Line2 }
func (s *RepresentativeState) City() string  { return s.address.Get().City }
func (s *RepresentativeState) State() string { return s.address.Get().State }
func (s *RepresentativeState) Zip() string   { return s.address.Get().Zip }

// Representatives holds the result of the last successful search
func (s *RepresentativeState) Representatives() *observable.Cell[[]civic.Representative] {
	return s.representatives
}

// LastError holds the most recent failure
func (s *RepresentativeState) LastError() *observable.Cell[error] {
	return s.reporter.lastError
}

// UpdateAddress replaces the address and persists all of its fields
func (s *RepresentativeState) UpdateAddress(addr civic.Address) {
	s.address.Set(addr)
	if s.prefs != nil {
		s.prefs.SaveAll(addr.Fields())
	}
}

// UpdateField changes one address field and persists it
func (s *RepresentativeState) UpdateField(key string, value string) error {
	if !civic.IsAddressKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownAddressField, key)
	}
	s.address.Update(func(cur civic.Address) civic.Address {
		return cur.WithField(key, value)
	})
	if s.prefs != nil {
		s.prefs.Save(key, value)
	}
	return nil
}

// FetchRepresentatives looks up the representatives for the current
// address. The last call to complete wins.
func (s *RepresentativeState) FetchRepresentatives(ctx context.Context) error {
	addr := s.address.Get()
	reps, err := s.client.Representatives(ctx, addr.FormattedString())
	if err != nil {
		return s.reporter.fail("failed to fetch representatives", err)
	}
	s.representatives.Set(reps)
	return nil
}

// UseLocation fills the address from a coordinate and searches it. A
// geocoding failure or an empty result is not an error: the address becomes
// empty and the search runs anyway.
func (s *RepresentativeState) UseLocation(
	ctx context.Context,
	geocoder civic.Geocoder,
	lat float64,
	lng float64,
) error {
	var addr civic.Address
	candidates, err := geocoder.ReverseGeocode(ctx, lat, lng)
	switch {
	case err != nil:
		s.reporter.logger.Warn(
			"reverse geocoding failed",
			"component", s.reporter.component,
			"error", err,
		)
	case len(candidates) == 0:
		s.reporter.logger.Debug(
			"no address for location",
			"component", s.reporter.component,
		)
	default:
		addr = candidates[0]
	}
	s.UpdateAddress(addr)
	return s.FetchRepresentatives(ctx)
}

// Close stops following the preference store
func (s *RepresentativeState) Close() {
	s.closeOnce.Do(func() {
		if s.unobserve != nil {
			s.unobserve()
		}
	})
}
