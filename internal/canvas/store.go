/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the orchestrating state container for one open
// diagram: the shape, connector, and selection slices composed over a single
// command history. Every public mutator funnels through the history so each
// user-visible edit is uniformly undoable; internal mutators exist so
// commands and cascade logic can write state without re-wrapping themselves.
package canvas

import (
	"log/slog"

	"diagramstudio/internal/command"
	"diagramstudio/internal/entity"
	applog "diagramstudio/internal/log"
)

// Options configures a store instance.
type Options struct {
	// HistoryLimit caps the undo depth; 0 means unbounded.
	HistoryLimit int
}

// Store owns the entity state of exactly one open diagram. Each open diagram
// gets its own instance; there is no process-wide store. All methods must be
// called from the single goroutine driving UI events for that diagram.
type Store struct {
	log *slog.Logger

	shapes     []*entity.Shape
	connectors []*entity.Connector

	history *command.History

	selected     map[string]struct{}
	dragging     map[string]struct{}
	dragOrig     map[string]entity.Shape     // shape state captured at drag begin
	dragConnOrig map[string]entity.Connector // attached connector state at drag begin

	connectState  ConnectState
	pendingSource *entity.Endpoint

	observers map[int]Observer
	nextObsID int
}

// NewStore creates an empty store for one diagram editing session.
func NewStore(opts Options) *Store {
	return &Store{
		log:          applog.WithComponent("canvas"),
		history:      command.NewHistory(opts.HistoryLimit),
		selected:     map[string]struct{}{},
		dragging:     map[string]struct{}{},
		dragOrig:     map[string]entity.Shape{},
		dragConnOrig: map[string]entity.Connector{},
		observers:    map[int]Observer{},
	}
}

// Load replaces the store content with the given entities, e.g. after opening
// a diagram file or a Mermaid/LLM import. Entities must already satisfy the
// validation contract; invalid connectors are dropped with a logged error.
// The history and selection are cleared: a load starts a fresh timeline.
func (s *Store) Load(shapes []*entity.Shape, connectors []*entity.Connector) {
	s.shapes = nil
	s.connectors = nil
	for _, sh := range shapes {
		s.shapes = append(s.shapes, sh.Clone())
	}
	ctx := entity.NewContext(s.shapes)
	for _, c := range connectors {
		if res := entity.Validate(c, ctx); !res.Valid {
			s.logEdit(entity.SeverityError, entity.CodeValidationFailed, c.ID, res.Errors[0])
			continue
		}
		cc := c.Clone()
		s.refreshConnector(cc)
		s.connectors = append(s.connectors, cc)
	}
	s.history.Clear()
	s.selected = map[string]struct{}{}
	s.dragging = map[string]struct{}{}
	s.dragOrig = map[string]entity.Shape{}
	s.dragConnOrig = map[string]entity.Connector{}
	s.emit(Event{Kind: EventLoaded})
}

// Shapes returns deep copies of all shapes in z-order.
func (s *Store) Shapes() []*entity.Shape {
	out := make([]*entity.Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh.Clone()
	}
	return out
}

// Connectors returns deep copies of all connectors.
func (s *Store) Connectors() []*entity.Connector {
	out := make([]*entity.Connector, len(s.connectors))
	for i, c := range s.connectors {
		out[i] = c.Clone()
	}
	return out
}

// Snapshot returns deep copies of both entity lists for rendering and
// persistence collaborators.
func (s *Store) Snapshot() ([]*entity.Shape, []*entity.Connector) {
	return s.Shapes(), s.Connectors()
}

// ShapeByID returns a deep copy of the shape with the given id.
func (s *Store) ShapeByID(id string) (*entity.Shape, bool) {
	if sh := s.findShape(id); sh != nil {
		return sh.Clone(), true
	}
	return nil, false
}

// ConnectorByID returns a deep copy of the connector with the given id.
func (s *Store) ConnectorByID(id string) (*entity.Connector, bool) {
	if c := s.findConnector(id); c != nil {
		return c.Clone(), true
	}
	return nil, false
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// Undo reverts the most recent edit, including any bundled cascades.
func (s *Store) Undo() bool {
	cmd, ok := s.history.Undo()
	if ok {
		s.log.Debug("undo", slog.String("cmd", cmd.Description()))
		s.emit(Event{Kind: EventHistoryChanged})
	}
	return ok
}

// Redo re-applies the most recently undone edit.
func (s *Store) Redo() bool {
	cmd, ok := s.history.Redo()
	if ok {
		s.log.Debug("redo", slog.String("cmd", cmd.Description()))
		s.emit(Event{Kind: EventHistoryChanged})
	}
	return ok
}

// HistoryStats returns undo/redo stack depths for diagnostics.
func (s *Store) HistoryStats() (undoDepth, redoDepth int) { return s.history.Stats() }

// executeCommand is the single funnel for undoable mutations.
func (s *Store) executeCommand(cmd command.Command) {
	s.history.Execute(cmd)
	s.log.Debug("execute", slog.String("cmd", cmd.Description()))
	s.emit(Event{Kind: EventHistoryChanged})
}

func (s *Store) logEdit(sev entity.Severity, code entity.Code, entityID, msg string) {
	rec := s.log.With(
		slog.String("code", string(code)),
		slog.String("severity", string(sev)),
		slog.String("entity", entityID),
	)
	if sev == entity.SeverityError {
		rec.Error(msg)
	} else {
		rec.Warn(msg)
	}
}

// --- unwrapped lookups and mutators -------------------------------------

func (s *Store) findShape(id string) *entity.Shape {
	for _, sh := range s.shapes {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

func (s *Store) findConnector(id string) *entity.Connector {
	for _, c := range s.connectors {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) shapeIndex(id string) int {
	for i, sh := range s.shapes {
		if sh.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) connectorIndex(id string) int {
	for i, c := range s.connectors {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) internalInsertShape(sh *entity.Shape, at int) {
	if at < 0 || at > len(s.shapes) {
		at = len(s.shapes)
	}
	s.shapes = append(s.shapes, nil)
	copy(s.shapes[at+1:], s.shapes[at:])
	s.shapes[at] = sh
}

func (s *Store) internalRemoveShape(id string) {
	if i := s.shapeIndex(id); i >= 0 {
		s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	}
}

// internalSetShape overwrites the stored shape with the given value.
func (s *Store) internalSetShape(v entity.Shape) {
	if sh := s.findShape(v.ID); sh != nil {
		*sh = *v.Clone()
	}
}

func (s *Store) internalInsertConnector(c *entity.Connector, at int) {
	if at < 0 || at > len(s.connectors) {
		at = len(s.connectors)
	}
	s.connectors = append(s.connectors, nil)
	copy(s.connectors[at+1:], s.connectors[at:])
	s.connectors[at] = c
}

func (s *Store) internalRemoveConnector(id string) {
	if i := s.connectorIndex(id); i >= 0 {
		s.connectors = append(s.connectors[:i], s.connectors[i+1:]...)
	}
}

// internalSetConnector overwrites the stored connector with the given value.
func (s *Store) internalSetConnector(v entity.Connector) {
	if c := s.findConnector(v.ID); c != nil {
		*c = *v.Clone()
	}
}
