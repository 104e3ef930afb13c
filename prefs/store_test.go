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

package prefs_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/civic"
	"github.com/blinklabs-io/civicprep/internal/test/testutil"
	"github.com/blinklabs-io/civicprep/prefs"
)

func newMemoryStore(t *testing.T, opts ...prefs.StoreOptionFunc) *prefs.Store {
	t.Helper()
	s, err := prefs.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newMemoryStore(t)
	_, ok := s.Get(civic.KeyCity)
	require.False(t, ok)

	s.Save(civic.KeyCity, "Springfield")
	val, ok := s.Get(civic.KeyCity)
	require.True(t, ok)
	require.Equal(t, "Springfield", val)
	require.Equal(t, prefs.Values{civic.KeyCity: "Springfield"}, s.Observe().Get())
	require.NoError(t, s.LastError().Get())
}

func TestSaveAllRoundTrip(t *testing.T) {
	s := newMemoryStore(t)
	addr := civic.Address{
		Line1: "1 Main St",
		Line2: "Apt 2",
		City:  "Springfield",
		State: "IL",
		Zip:   "62701",
	}
	s.SaveAll(addr.Fields())
	for key, want := range addr.Fields() {
		got, ok := s.Get(key)
		require.True(t, ok, key)
		require.Equal(t, want, got, key)
	}
	require.Equal(t, addr, civic.AddressFromFields(s.Observe().Get()))
}

func TestObserveSkipsUnchangedWrites(t *testing.T) {
	s := newMemoryStore(t)
	rec := testutil.Record(t, s.Observe())
	s.Save(civic.KeyZip, "12345")
	s.Save(civic.KeyZip, "12345")
	s.Save(civic.KeyZip, "54321")
	require.Equal(t, 3, rec.Len())
	require.Equal(t, "54321", rec.Last()[civic.KeyZip])
}

func TestClear(t *testing.T) {
	s := newMemoryStore(t)
	s.SaveAll(map[string]string{
		civic.KeyCity:  "Springfield",
		civic.KeyState: "IL",
	})
	require.NoError(t, s.Clear())
	_, ok := s.Get(civic.KeyCity)
	require.False(t, ok)
	require.Empty(t, s.Observe().Get())
}

func TestSaveAfterCloseRecordsError(t *testing.T) {
	s, err := prefs.New()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s.Save(civic.KeyCity, "Springfield")
	require.ErrorIs(t, s.LastError().Get(), prefs.ErrStoreClosed)
	require.ErrorIs(t, s.Clear(), prefs.ErrStoreClosed)
	require.Empty(t, s.Observe().Get())
}

func TestObserveFollowsCommitOrder(t *testing.T) {
	s := newMemoryStore(t)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Save(civic.KeyZip, strconv.Itoa(i))
		}()
	}
	wg.Wait()
	stored, ok := s.Get(civic.KeyZip)
	require.True(t, ok)
	require.Equal(t, stored, s.Observe().Get()[civic.KeyZip])
	require.NoError(t, s.LastError().Get())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newMemoryStore(t, prefs.WithPromRegistry(reg))
	s.Save(civic.KeyCity, "Springfield")
	s.Save(civic.KeyState, "IL")
	count, err := promtestutil.GatherAndCount(reg, "civicprep_prefs_writes_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "civicprep_prefs_writes_total":
			require.InDelta(t, 2, mf.GetMetric()[0].GetCounter().GetValue(), 0)
		case "civicprep_prefs_keys":
			require.InDelta(t, 2, mf.GetMetric()[0].GetGauge().GetValue(), 0)
		}
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	s, err := prefs.New(prefs.WithDataDir(dataDir))
	require.NoError(t, err)
	addr := civic.Address{
		Line1: "1 Main St",
		City:  "Springfield",
		State: "IL",
		Zip:   "62701",
	}
	s.SaveAll(addr.Fields())
	require.NoError(t, s.Close())

	s, err = prefs.New(prefs.WithDataDir(dataDir))
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, addr, civic.AddressFromFields(s.Observe().Get()))
	// an unset field reads back as stored, the empty string
	line2, ok := s.Get(civic.KeyLine2)
	require.True(t, ok)
	require.Empty(t, line2)
}
