/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"diagramstudio/internal/command"
	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
)

// ConnectState tracks the two-phase interactive connector creation mode.
type ConnectState int

const (
	// ConnectIdle: no connector creation in progress.
	ConnectIdle ConnectState = iota
	// ConnectPickSource: mode armed, waiting for the source pick.
	ConnectPickSource
	// ConnectPickTarget: source picked, waiting for the target pick.
	ConnectPickTarget
)

// ConnectorPatch is a partial connector update. Nil fields are left unchanged.
type ConnectorPatch struct {
	Type       *entity.ConnectorType
	Source     *entity.Endpoint
	Target     *entity.Endpoint
	AutoUpdate *bool
	Label      *string
}

func applyConnectorPatch(c entity.Connector, p ConnectorPatch) entity.Connector {
	out := *c.Clone()
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Source != nil {
		out.Source = *p.Source
	}
	if p.Target != nil {
		out.Target = *p.Target
	}
	if p.AutoUpdate != nil {
		v := *p.AutoUpdate
		out.AutoUpdate = &v
	}
	if p.Label != nil {
		out.Label = *p.Label
	}
	return out
}

// AddConnector validates and adds a connector as an undoable edit. A connector
// failing validation (dangling endpoint, unknown anchor, duplicate id) is
// rejected with a logged error and leaves the history untouched.
func (s *Store) AddConnector(c *entity.Connector) bool {
	if c == nil {
		return false
	}
	if s.findConnector(c.ID) != nil {
		s.logEdit(entity.SeverityError, entity.CodeValidationFailed, c.ID, "connector id already present")
		return false
	}
	if res := entity.Validate(c, entity.NewContext(s.shapes)); !res.Valid {
		s.logEdit(entity.SeverityError, entity.CodeValidationFailed, c.ID, res.Errors[0])
		return false
	}
	val := c.Clone()
	s.refreshConnector(val)
	at := len(s.connectors)
	s.executeCommand(&command.Func{
		Desc:   "add connector",
		Do:     func() { s.internalInsertConnector(val, at) },
		Revert: func() { s.internalRemoveConnector(val.ID) },
	})
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{val.ID}})
	return true
}

// UpdateConnector applies a property patch as an undoable edit. Endpoint
// changes are re-validated against the current shapes; geometry is recomputed
// from the patched endpoints.
func (s *Store) UpdateConnector(id string, patch ConnectorPatch) bool {
	c := s.findConnector(id)
	if c == nil {
		s.logEdit(entity.SeverityError, entity.CodeNotFound, id, "update of missing connector")
		return false
	}
	before := *c.Clone()
	after := applyConnectorPatch(before, patch)
	if res := entity.Validate(&after, entity.NewContext(s.shapes)); !res.Valid {
		s.logEdit(entity.SeverityError, entity.CodeValidationFailed, id, res.Errors[0])
		return false
	}
	if src, dst := s.findShape(after.Source.ShapeID), s.findShape(after.Target.ShapeID); src != nil && dst != nil {
		after.Bounds = geometry.BoundsBetween(
			geometry.AnchorPoint(src.Bounds(), after.Source.Anchor),
			geometry.AnchorPoint(dst.Bounds(), after.Target.Anchor),
		)
	}
	s.executeCommand(&command.Func{
		Desc:   "update connector",
		Do:     func() { s.internalSetConnector(after) },
		Revert: func() { s.internalSetConnector(before) },
	})
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{id}})
	return true
}

// DeleteConnector removes a connector as an undoable edit, restoring its exact
// z-order position on undo.
func (s *Store) DeleteConnector(id string) bool {
	c := s.findConnector(id)
	if c == nil {
		s.logEdit(entity.SeverityError, entity.CodeNotFound, id, "delete of missing connector")
		return false
	}
	val := *c.Clone()
	at := s.connectorIndex(id)
	s.executeCommand(&command.Func{
		Desc: "delete connector",
		Do:   func() { s.internalRemoveConnector(val.ID) },
		Revert: func() {
			v := val
			s.internalInsertConnector(v.Clone(), at)
		},
	})
	s.dropFromSelection(id)
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{id}})
	return true
}

// --- interactive connect mode --------------------------------------------

// ConnectMode returns the current state of the connector creation mode.
func (s *Store) ConnectMode() ConnectState { return s.connectState }

// StartConnectMode arms the two-phase connector creation flow. The next
// PickConnectSource call supplies the source endpoint.
func (s *Store) StartConnectMode() {
	s.connectState = ConnectPickSource
	s.pendingSource = nil
	s.emit(Event{Kind: EventConnectMode})
}

// PickConnectSource records the source endpoint of the pending connector.
// Picking a shape that does not exist cancels nothing: the mode stays armed
// and the miss is logged.
func (s *Store) PickConnectSource(shapeID string, anchor geometry.Anchor) bool {
	if s.connectState != ConnectPickSource {
		return false
	}
	if s.findShape(shapeID) == nil {
		s.logEdit(entity.SeverityWarning, entity.CodeNotFound, shapeID, "connect source pick missed")
		return false
	}
	s.pendingSource = &entity.Endpoint{ShapeID: shapeID, Anchor: anchor}
	s.connectState = ConnectPickTarget
	s.emit(Event{Kind: EventConnectMode})
	return true
}

// CompleteConnect finishes the pending connector onto an existing target
// shape. The mode returns to idle regardless of whether the add succeeds.
func (s *Store) CompleteConnect(targetID string, anchor geometry.Anchor, ctype entity.ConnectorType) (string, bool) {
	if s.connectState != ConnectPickTarget || s.pendingSource == nil {
		return "", false
	}
	c := entity.NewConnector(ctype, *s.pendingSource, entity.Endpoint{ShapeID: targetID, Anchor: anchor})
	s.resetConnectMode()
	if !s.AddConnector(c) {
		return "", false
	}
	return c.ID, true
}

// CompleteConnectWithNewShape finishes the pending connector by creating the
// target shape first: the shape is placed so the given anchor of its bounds
// lands on target, then shape and connector are added as one undoable edit.
func (s *Store) CompleteConnectWithNewShape(tool entity.ToolDef, target geometry.Point, anchor geometry.Anchor, ctype entity.ConnectorType) (shapeID, connectorID string, ok bool) {
	if s.connectState != ConnectPickTarget || s.pendingSource == nil {
		return "", "", false
	}
	src := *s.pendingSource
	s.resetConnectMode()
	if s.findShape(src.ShapeID) == nil {
		s.logEdit(entity.SeverityError, entity.CodeNotFound, src.ShapeID, "connect source vanished before completion")
		return "", "", false
	}

	sh := entity.NewShapeAtAnchorTarget(tool, target, anchor)
	conn := entity.NewConnector(ctype, src, entity.Endpoint{ShapeID: sh.ID, Anchor: anchor})

	shapeAt := len(s.shapes)
	connAt := len(s.connectors)
	cmd := command.NewComposite("add connected shape")
	cmd.Add(&command.Func{
		Do:     func() { s.internalInsertShape(sh, shapeAt) },
		Revert: func() { s.internalRemoveShape(sh.ID) },
	})
	cmd.Add(&command.Func{
		Do: func() {
			s.internalInsertConnector(conn, connAt)
			s.refreshConnector(conn)
		},
		Revert: func() { s.internalRemoveConnector(conn.ID) },
	})
	s.executeCommand(cmd)
	s.emit(Event{Kind: EventEntitiesChanged, EntityIDs: []string{sh.ID, conn.ID}})
	return sh.ID, conn.ID, true
}

// CancelConnectMode abandons the pending connector without touching history.
func (s *Store) CancelConnectMode() {
	if s.connectState == ConnectIdle {
		return
	}
	s.resetConnectMode()
}

func (s *Store) resetConnectMode() {
	s.connectState = ConnectIdle
	s.pendingSource = nil
	s.emit(Event{Kind: EventConnectMode})
}
