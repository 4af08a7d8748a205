/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"sort"

	"diagramstudio/internal/command"
	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
)

// ShapePatch is a partial shape update. Nil fields are left unchanged.
type ShapePatch struct {
	Position *geometry.Point
	Size     *geometry.Size
	Style    *entity.Style
	Text     *string
	Subtype  *string
	Font     *entity.Font
}

func applyShapePatch(sh entity.Shape, p ShapePatch) entity.Shape {
	out := *sh.Clone()
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	if p.Style != nil {
		st := *p.Style
		out.Style = &st
	}
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.Subtype != nil {
		out.Subtype = *p.Subtype
	}
	if p.Font != nil {
		f := *p.Font
		out.Font = &f
	}
	return out
}

// AddShape adds a shape to the diagram as an undoable edit. A duplicate id is
// rejected with a logged error and no history entry.
func (s *Store) AddShape(sh *entity.Shape) bool {
	if sh == nil {
		return false
	}
	if s.findShape(sh.ID) != nil {
		s.logEdit(entity.SeverityError, entity.CodeValidationFailed, sh.ID, "shape id already present")
		return false
	}
	val := sh.Clone()
	at := len(s.shapes)
	s.executeCommand(&command.Func{
		Desc:   "add shape",
		Do:     func() { s.internalInsertShape(val, at) },
		Revert: func() { s.internalRemoveShape(val.ID) },
	})
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{val.ID}})
	return true
}

// UpdateShape applies a property patch as an undoable edit. When the patch
// changes the shape's bounds, dependent connector geometry is recomputed as
// part of the same command, so one undo reverts both.
func (s *Store) UpdateShape(id string, patch ShapePatch) bool {
	sh := s.findShape(id)
	if sh == nil {
		s.logEdit(entity.SeverityError, entity.CodeNotFound, id, "update of missing shape")
		return false
	}
	before := *sh.Clone()
	after := applyShapePatch(before, patch)

	cmd := command.NewComposite("update shape")
	cmd.Add(&command.Func{
		Do:     func() { s.internalSetShape(after) },
		Revert: func() { s.internalSetShape(before) },
	})
	if before.Bounds() != after.Bounds() {
		s.addConnectorCascade(cmd, map[string]geometry.Rect{id: after.Bounds()})
	}
	s.executeCommand(cmd)
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{id}})
	return true
}

// MoveShapeTo moves a single shape so its top-left corner lands at pos.
func (s *Store) MoveShapeTo(id string, pos geometry.Point) bool {
	return s.moveShapes("move shape", map[string]geometry.Point{id: pos})
}

// MoveShapesBy translates a batch of shapes by delta as one undoable edit.
func (s *Store) MoveShapesBy(ids []string, delta geometry.Point) bool {
	next := map[string]geometry.Point{}
	for _, id := range ids {
		if sh := s.findShape(id); sh != nil {
			next[id] = geometry.Point{X: sh.Position.X + delta.X, Y: sh.Position.Y + delta.Y}
		}
	}
	return s.moveShapes(fmt.Sprintf("move %d shapes", len(next)), next)
}

// moveShapes builds and executes the composite command for a (batch) move:
// one sub-effect per shape position plus the connector auto-update cascade.
// The cascade runs through the internal update path; it is not separately
// undoable, so a single undo reverts the positions and all dependent
// connector geometry atomically.
func (s *Store) moveShapes(desc string, next map[string]geometry.Point) bool {
	futureBounds := map[string]geometry.Rect{}
	cmd := command.NewComposite(desc)
	for id, pos := range next {
		sh := s.findShape(id)
		if sh == nil {
			s.logEdit(entity.SeverityError, entity.CodeNotFound, id, "move of missing shape")
			continue
		}
		before := *sh.Clone()
		after := before
		after.Position = pos
		futureBounds[id] = after.Bounds()
		b, a := before, after
		cmd.Add(&command.Func{
			Do:     func() { s.internalSetShape(a) },
			Revert: func() { s.internalSetShape(b) },
		})
	}
	if len(futureBounds) == 0 {
		return false
	}
	s.addConnectorCascade(cmd, futureBounds)
	s.executeCommand(cmd)
	ids := make([]string, 0, len(futureBounds))
	for id := range futureBounds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: ids})
	return true
}

// addConnectorCascade appends sub-effects recomputing every connector that
// references a moved shape. future maps moved shape ids to their post-move
// bounds; unmoved endpoints keep their current bounds.
func (s *Store) addConnectorCascade(cmd *command.Composite, future map[string]geometry.Rect) {
	boundsOf := func(id string) (geometry.Rect, bool) {
		if r, ok := future[id]; ok {
			return r, true
		}
		if sh := s.findShape(id); sh != nil {
			return sh.Bounds(), true
		}
		return geometry.Rect{}, false
	}
	seen := map[string]struct{}{}
	for id := range future {
		for _, c := range s.connectorsAttachedTo(id) {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			src, okS := boundsOf(c.Source.ShapeID)
			dst, okD := boundsOf(c.Target.ShapeID)
			if !okS || !okD {
				continue
			}
			before := *c.Clone()
			after := connectorAfterMove(c, src, dst)
			cmd.Add(&command.Func{
				Do:     func() { s.internalSetConnector(after) },
				Revert: func() { s.internalSetConnector(before) },
			})
		}
	}
}

// DeleteShape removes a shape and cascades to its attached connectors. The
// command captures the shape, the connectors, and their z-order positions at
// construction, so undoing the single delete restores everything exactly.
func (s *Store) DeleteShape(id string) bool {
	sh := s.findShape(id)
	if sh == nil {
		s.logEdit(entity.SeverityError, entity.CodeNotFound, id, "delete of missing shape")
		return false
	}
	shapeVal := *sh.Clone()
	shapeIdx := s.shapeIndex(id)

	type capturedConn struct {
		val entity.Connector
		idx int
	}
	var conns []capturedConn
	for _, c := range s.connectorsAttachedTo(id) {
		conns = append(conns, capturedConn{val: *c.Clone(), idx: s.connectorIndex(c.ID)})
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].idx < conns[j].idx })

	removed := []string{id}
	for _, cc := range conns {
		removed = append(removed, cc.val.ID)
	}

	s.executeCommand(&command.Func{
		Desc: "delete shape",
		Do: func() {
			for _, cc := range conns {
				s.internalRemoveConnector(cc.val.ID)
			}
			s.internalRemoveShape(shapeVal.ID)
		},
		Revert: func() {
			sv := shapeVal
			s.internalInsertShape(sv.Clone(), shapeIdx)
			for _, cc := range conns {
				cv := cc.val
				s.internalInsertConnector(cv.Clone(), cc.idx)
			}
		},
	})
	s.dropFromSelection(removed...)
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: removed})
	return true
}
