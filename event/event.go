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

package event

import (
	"time"
)

// EventQueueSize is the buffer of each subscriber channel
const EventQueueSize = 20

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// ElectionChangedEventType is published after any write to the election store
const ElectionChangedEventType = EventType("election.changed")

// ElectionOp identifies the kind of write behind an ElectionChangedEvent
type ElectionOp string

const (
	ElectionOpUpsert ElectionOp = "upsert"
	ElectionOpSync   ElectionOp = "sync"
	ElectionOpSaved  ElectionOp = "saved"
	ElectionOpDelete ElectionOp = "delete"
	ElectionOpPurge  ElectionOp = "purge"
)

// ElectionChangedEvent describes a committed write to the election store.
// IDs is empty for writes that may touch any row, such as a purge.
type ElectionChangedEvent struct {
	Op  ElectionOp
	IDs []int64
}
