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

// Package observable provides value holders that push their current value
// to registered observers whenever it changes.
package observable

import (
	"slices"
	"sync"
)

// ObserverFunc receives the value held by a Cell
type ObserverFunc[T any] func(T)

type observerEntry[T any] struct {
	id uint64
	fn ObserverFunc[T]
}

// Cell holds a single value and notifies observers when it is replaced.
//
// Observers run synchronously on the goroutine calling Set, in the order
// they were registered. An observer must not call Set on the cell it is
// observing.
type Cell[T any] struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	value     T
	equal     func(a, b T) bool
	observers []observerEntry[T]
	nextId    uint64
}

type CellOptionFunc[T any] func(*Cell[T])

// WithEqual suppresses notifications when the new value is equal to the
// current one according to fn
func WithEqual[T any](fn func(a, b T) bool) CellOptionFunc[T] {
	return func(c *Cell[T]) {
		c.equal = fn
	}
}

// Comparable returns an equality function for comparable types
func Comparable[T comparable]() func(a, b T) bool {
	return func(a, b T) bool {
		return a == b
	}
}

// NewCell returns a cell holding initial
func NewCell[T any](initial T, opts ...CellOptionFunc[T]) *Cell[T] {
	c := &Cell[T]{
		value: initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current value
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the current value and notifies observers. It returns false
// when the value was considered equal to the current one and nothing was
// published.
func (c *Cell[T]) Set(value T) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if c.equal != nil && c.equal(c.value, value) {
		c.mu.Unlock()
		return false
	}
	c.value = value
	observers := slices.Clone(c.observers)
	c.mu.Unlock()
	for _, o := range observers {
		o.fn(value)
	}
	return true
}

// Update applies fn to the current value and stores the result
func (c *Cell[T]) Update(fn func(T) T) bool {
	// notifyMu serializes read-modify-write against concurrent Set calls
	c.notifyMu.Lock()
	c.mu.Lock()
	next := fn(c.value)
	if c.equal != nil && c.equal(c.value, next) {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		return false
	}
	c.value = next
	observers := slices.Clone(c.observers)
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, o := range observers {
		o.fn(next)
	}
	return true
}

// Observe registers fn and immediately calls it with the current value.
// The returned function removes the observer and is safe to call more
// than once.
func (c *Cell[T]) Observe(fn ObserverFunc[T]) func() {
	c.notifyMu.Lock()
	c.mu.Lock()
	c.nextId++
	id := c.nextId
	c.observers = append(
		c.observers,
		observerEntry[T]{id: id, fn: fn},
	)
	current := c.value
	c.mu.Unlock()
	fn(current)
	c.notifyMu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = slices.DeleteFunc(
			c.observers,
			func(o observerEntry[T]) bool {
				return o.id == id
			},
		)
	}
}

// ObserverCount returns the number of registered observers
func (c *Cell[T]) ObserverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}
