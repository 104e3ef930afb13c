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

package observable_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/civicprep/observable"
)

func TestCellObserveReceivesCurrentValue(t *testing.T) {
	c := observable.NewCell("initial")
	var got []string
	cancel := c.Observe(func(v string) {
		got = append(got, v)
	})
	defer cancel()
	require.Equal(t, []string{"initial"}, got)
	c.Set("next")
	require.Equal(t, []string{"initial", "next"}, got)
	require.Equal(t, "next", c.Get())
}

func TestCellObserverOrder(t *testing.T) {
	c := observable.NewCell(0)
	var order []string
	c.Observe(func(int) { order = append(order, "first") })
	c.Observe(func(int) { order = append(order, "second") })
	order = nil
	c.Set(1)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestCellCancel(t *testing.T) {
	c := observable.NewCell(0)
	calls := 0
	cancel := c.Observe(func(int) { calls++ })
	require.Equal(t, 1, c.ObserverCount())
	cancel()
	cancel()
	require.Equal(t, 0, c.ObserverCount())
	c.Set(5)
	require.Equal(t, 1, calls)
}

func TestCellEqualSuppressesNotification(t *testing.T) {
	c := observable.NewCell(
		"a",
		observable.WithEqual(observable.Comparable[string]()),
	)
	calls := 0
	c.Observe(func(string) { calls++ })
	require.False(t, c.Set("a"))
	require.True(t, c.Set("b"))
	require.Equal(t, 2, calls)
}

func TestCellWithoutEqualAlwaysNotifies(t *testing.T) {
	c := observable.NewCell(1)
	calls := 0
	c.Observe(func(int) { calls++ })
	require.True(t, c.Set(1))
	require.True(t, c.Set(1))
	require.Equal(t, 3, calls)
}

func TestCellUpdate(t *testing.T) {
	c := observable.NewCell(
		1,
		observable.WithEqual(observable.Comparable[int]()),
	)
	var seen []int
	c.Observe(func(v int) { seen = append(seen, v) })
	require.True(t, c.Update(func(v int) int { return v + 1 }))
	require.False(t, c.Update(func(v int) int { return v }))
	require.Equal(t, []int{1, 2}, seen)
}

func TestCellConcurrentSet(t *testing.T) {
	c := observable.NewCell(0)
	var mu sync.Mutex
	count := 0
	c.Observe(func(int) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			c.Set(v)
		}(i)
	}
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 51, count)
}
