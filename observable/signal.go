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

package observable

import "sync"

// Signal carries one-shot values. Each emitted value is handed to exactly
// one consumer: the registered observer if there is one, otherwise the
// next call to Consume or Observe. An unconsumed value is replaced by a
// later Emit.
type Signal[T any] struct {
	mu       sync.Mutex
	pending  T
	hasValue bool
	observer ObserverFunc[T]
	obsId    uint64
}

// NewSignal returns an empty signal
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Emit publishes value
func (s *Signal[T]) Emit(value T) {
	s.mu.Lock()
	observer := s.observer
	if observer == nil {
		s.pending = value
		s.hasValue = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	observer(value)
}

// Consume returns the pending value, if any, and clears it
func (s *Signal[T]) Consume() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.hasValue {
		return zero, false
	}
	value := s.pending
	s.pending = zero
	s.hasValue = false
	return value, true
}

// Pending reports whether a value is waiting to be consumed
func (s *Signal[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasValue
}

// Observe sets the single observer, replacing any previous one. A pending
// value is delivered to fn immediately and then cleared.
func (s *Signal[T]) Observe(fn ObserverFunc[T]) func() {
	s.mu.Lock()
	s.obsId++
	id := s.obsId
	s.observer = fn
	s.mu.Unlock()
	if value, ok := s.Consume(); ok {
		fn(value)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.obsId == id {
			s.observer = nil
		}
	}
}
