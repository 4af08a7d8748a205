/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Selection and drag are transient interaction state: they never enter the
// command history. Only the committed result of a drag is undoable.

import (
	"sort"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
)

// Select replaces the selection with the given entities. Unknown ids are
// silently ignored.
func (s *Store) Select(ids ...string) {
	s.selected = map[string]struct{}{}
	for _, id := range ids {
		if s.findShape(id) != nil || s.findConnector(id) != nil {
			s.selected[id] = struct{}{}
		}
	}
	s.emit(Event{Kind: EventSelectionChanged, EntityIDs: s.SelectedIDs()})
}

// ToggleSelect adds the entity to the selection, or removes it when already
// selected.
func (s *Store) ToggleSelect(id string) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else if s.findShape(id) != nil || s.findConnector(id) != nil {
		s.selected[id] = struct{}{}
	}
	s.emit(Event{Kind: EventSelectionChanged, EntityIDs: s.SelectedIDs()})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.selected = map[string]struct{}{}
	s.emit(Event{Kind: EventSelectionChanged})
}

// IsSelected reports whether the entity is part of the selection.
func (s *Store) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the selected entity ids in stable order.
func (s *Store) SelectedIDs() []string {
	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SelectInBox replaces the selection with every entity intersecting the box.
// Partial overlap selects; the box may be given in any corner order.
func (s *Store) SelectInBox(box geometry.Rect) []string {
	hits := entity.FindEntitiesInBox(s.shapes, s.connectors, box)
	s.selected = map[string]struct{}{}
	for _, e := range hits {
		s.selected[e.EntityID()] = struct{}{}
	}
	ids := s.SelectedIDs()
	s.emit(Event{Kind: EventSelectionChanged, EntityIDs: ids})
	return ids
}

// dropFromSelection removes deleted entities from selection and drag state.
func (s *Store) dropFromSelection(ids ...string) {
	changed := false
	for _, id := range ids {
		if _, ok := s.selected[id]; ok {
			delete(s.selected, id)
			changed = true
		}
		delete(s.dragging, id)
		delete(s.dragOrig, id)
	}
	if changed {
		s.emit(Event{Kind: EventSelectionChanged, EntityIDs: s.SelectedIDs()})
	}
}

// --- drag lifecycle -------------------------------------------------------

// BeginDrag starts an interactive move of the given shapes, capturing their
// state and the state of every attached connector so the drag can be
// committed as one edit or cancelled without a trace.
func (s *Store) BeginDrag(ids ...string) bool {
	s.dragging = map[string]struct{}{}
	s.dragOrig = map[string]entity.Shape{}
	s.dragConnOrig = map[string]entity.Connector{}
	for _, id := range ids {
		sh := s.findShape(id)
		if sh == nil {
			s.logEdit(entity.SeverityWarning, entity.CodeNotFound, id, "drag of missing shape")
			continue
		}
		s.dragging[id] = struct{}{}
		s.dragOrig[id] = *sh.Clone()
		for _, c := range s.connectorsAttachedTo(id) {
			s.dragConnOrig[c.ID] = *c.Clone()
		}
	}
	return len(s.dragging) > 0
}

// Dragging reports whether a drag is in progress.
func (s *Store) Dragging() bool { return len(s.dragging) > 0 }

// DragBy moves the dragged shapes by delta relative to their positions at
// BeginDrag, updating connector geometry live. The preview writes through the
// internal path and records nothing in the history.
func (s *Store) DragBy(delta geometry.Point) {
	if len(s.dragging) == 0 {
		return
	}
	for id := range s.dragging {
		orig := s.dragOrig[id]
		next := *orig.Clone()
		next.Position = geometry.Point{X: orig.Position.X + delta.X, Y: orig.Position.Y + delta.Y}
		s.internalSetShape(next)
	}
	for cid := range s.dragConnOrig {
		if c := s.findConnector(cid); c != nil {
			s.refreshConnector(c)
		}
	}
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: s.draggedIDs()})
}

// CommitDrag ends the drag and records the whole move, shape positions plus
// connector cascade, as a single history entry. A drag that moved nothing
// still clears the drag state but records no edit.
func (s *Store) CommitDrag() bool {
	if len(s.dragging) == 0 {
		return false
	}
	final := map[string]geometry.Point{}
	moved := false
	for id := range s.dragging {
		sh := s.findShape(id)
		if sh == nil {
			continue
		}
		final[id] = sh.Position
		if sh.Position != s.dragOrig[id].Position {
			moved = true
		}
	}
	// Rewind the preview so the command captures pre-drag state as its
	// undo side, then replay the move through the history.
	s.restoreDragOriginals()
	s.clearDragState()
	if !moved {
		return false
	}
	return s.moveShapes("move selection", final)
}

// CancelDrag ends the drag and restores the captured state. Nothing is
// recorded in the history.
func (s *Store) CancelDrag() {
	if len(s.dragging) == 0 {
		return
	}
	ids := s.draggedIDs()
	s.restoreDragOriginals()
	s.clearDragState()
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: ids})
}

func (s *Store) restoreDragOriginals() {
	for _, orig := range s.dragOrig {
		s.internalSetShape(orig)
	}
	for _, orig := range s.dragConnOrig {
		s.internalSetConnector(orig)
	}
}

func (s *Store) clearDragState() {
	s.dragging = map[string]struct{}{}
	s.dragOrig = map[string]entity.Shape{}
	s.dragConnOrig = map[string]entity.Connector{}
}

func (s *Store) draggedIDs() []string {
	out := make([]string, 0, len(s.dragging))
	for id := range s.dragging {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
