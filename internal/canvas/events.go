/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Explicit observer contract replacing ad-hoc subscribe/notify callbacks.
// Dispatch is synchronous on the store's goroutine: when a mutator returns,
// every observer has seen the event and state reads reflect the edit.

// EventKind tags a store notification.
type EventKind string

const (
	EventLoaded           EventKind = "loaded"
	EventEntitiesChanged  EventKind = "entities_changed"
	EventSelectionChanged EventKind = "selection_changed"
	EventHistoryChanged   EventKind = "history_changed"
	EventConnectMode      EventKind = "connect_mode"
)

// Event is a store notification. EntityIDs names the affected entities where
// that is meaningful.
type Event struct {
	Kind      EventKind
	EntityIDs []string
}

// Observer receives store events.
type Observer func(Event)

// Subscribe registers an observer and returns its removal function.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = o
	return func() { delete(s.observers, id) }
}

func (s *Store) emit(ev Event) {
	for _, o := range s.observers {
		o(ev)
	}
}
