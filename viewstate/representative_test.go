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

package viewstate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/prefs"
	"github.com/blinklabs-io/civicprep/viewstate"
)

var springfield = civic.Address{
	Line1: "1 Main St",
	Line2: "Apt 2",
	City:  "Springfield",
	State: "IL",
	Zip:   "62701",
}

func newPrefs(t *testing.T, dataDir string) *prefs.Store {
	t.Helper()
	p, err := prefs.New(prefs.WithDataDir(dataDir))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, p.Close())
	})
	return p
}

func TestUpdateAddressPersists(t *testing.T) {
	dataDir := t.TempDir()
	p, err := prefs.New(prefs.WithDataDir(dataDir))
	require.NoError(t, err)
	s := viewstate.NewRepresentativeState(&fakeCivic{}, p, nil)
	s.UpdateAddress(springfield)
	require.Equal(t, springfield, s.Address().Get())
	require.Equal(t, "Springfield", s.City())
	s.Close()
	require.NoError(t, p.Close())

	// a reload restores every field
	p = newPrefs(t, dataDir)
	s = viewstate.NewRepresentativeState(&fakeCivic{}, p, nil)
	defer s.Close()
	require.Equal(t, springfield, s.Address().Get())
	require.Equal(t, "1 Main St", s.Line1())
	require.Equal(t, "Apt 2", s.Line2())
	require.Equal(t, "IL", s.State())
	require.Equal(t, "62701", s.Zip())
}

func TestUnsetFieldsRestoreEmpty(t *testing.T) {
	p := newPrefs(t, "")
	s := viewstate.NewRepresentativeState(&fakeCivic{}, p, nil)
	defer s.Close()
	require.Equal(t, civic.Address{}, s.Address().Get())
	require.NoError(t, s.UpdateField(civic.KeyZip, "62701"))
	require.Equal(t, civic.Address{Zip: "62701"}, s.Address().Get())
	val, ok := p.Get(civic.KeyZip)
	require.True(t, ok)
	require.Equal(t, "62701", val)

	err := s.UpdateField("country.key", "US")
	require.ErrorIs(t, err, viewstate.ErrUnknownAddressField)
}

func TestFollowsPreferenceStore(t *testing.T) {
	p := newPrefs(t, "")
	s := viewstate.NewRepresentativeState(&fakeCivic{}, p, nil)
	defer s.Close()
	p.SaveAll(springfield.Fields())
	require.Equal(t, springfield, s.Address().Get())
}

func TestFetchRepresentatives(t *testing.T) {
	reps := []civic.Representative{
		{
			Official: civic.Official{Name: "Pat Doe"},
			Office:   civic.Office{Name: "Mayor"},
		},
	}
	client := &fakeCivic{representatives: reps}
	s := viewstate.NewRepresentativeState(client, nil, nil)
	defer s.Close()
	s.UpdateAddress(springfield)
	require.NoError(t, s.FetchRepresentatives(context.Background()))
	require.Equal(t, springfield.FormattedString(), client.lastAddress())
	require.Equal(t, reps, s.Representatives().Get())

	// a failure keeps the previous list
	client.setErr(errRemote)
	require.ErrorIs(t, s.FetchRepresentatives(context.Background()), errRemote)
	require.ErrorIs(t, s.LastError().Get(), errRemote)
	require.Equal(t, reps, s.Representatives().Get())
}

func TestUseLocation(t *testing.T) {
	client := &fakeCivic{}
	p := newPrefs(t, "")
	s := viewstate.NewRepresentativeState(client, p, nil)
	defer s.Close()

	geocoder := fakeGeocoder{
		addresses: []civic.Address{springfield, {City: "Elsewhere"}},
	}
	require.NoError(t, s.UseLocation(context.Background(), geocoder, 39.78, -89.65))
	require.Equal(t, springfield, s.Address().Get())
	require.Equal(t, springfield.FormattedString(), client.lastAddress())
	require.Equal(t, springfield, civic.AddressFromFields(p.Observe().Get()))
}

func TestUseLocationFailureClearsAddress(t *testing.T) {
	for _, geocoder := range []fakeGeocoder{
		{err: errors.New("no fix")},
		{},
	} {
		client := &fakeCivic{}
		s := viewstate.NewRepresentativeState(client, nil, nil)
		s.UpdateAddress(springfield)
		// the empty address is still searched and the client rejects it
		client.setErr(civic.ErrEmptyAddress)
		err := s.UseLocation(context.Background(), geocoder, 0, 0)
		require.ErrorIs(t, err, civic.ErrEmptyAddress)
		require.Equal(t, civic.Address{}, s.Address().Get())
		s.Close()
	}
}
