/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Connector auto-update: keeps a connector's cached geometry consistent with
// the current positions of its endpoint shapes. Runs as a bundled consequence
// of shape-move commands through the internal update path, never as a
// separately undoable action.

import (
	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
)

// connectorsAttachedTo returns the connectors referencing the given shape at
// either endpoint.
func (s *Store) connectorsAttachedTo(shapeID string) []*entity.Connector {
	var out []*entity.Connector
	for _, c := range s.connectors {
		if c.Source.ShapeID == shapeID || c.Target.ShapeID == shapeID {
			out = append(out, c)
		}
	}
	return out
}

// connectorAfterMove computes the connector value that results from its
// endpoint shapes having the given bounds.
//
// Phase 1 always recomputes the cached bounding geometry from the current
// anchors. Phase 2 runs unless auto update is explicitly disabled: it
// overwrites both anchors with the geometrically optimal pair and recomputes
// the bounds from those. The overwrite happens even when the recomputed
// anchors are unchanged, so repeated updates are idempotent.
func connectorAfterMove(c *entity.Connector, src, dst geometry.Rect) entity.Connector {
	cc := *c.Clone()
	cc.Bounds = geometry.BoundsBetween(
		geometry.AnchorPoint(src, cc.Source.Anchor),
		geometry.AnchorPoint(dst, cc.Target.Anchor),
	)
	if cc.AutoUpdates() {
		sa, da := geometry.OptimalAnchors(src, dst)
		cc.Source.Anchor = sa
		cc.Target.Anchor = da
		cc.Bounds = geometry.BoundsBetween(
			geometry.AnchorPoint(src, sa),
			geometry.AnchorPoint(dst, da),
		)
	}
	return cc
}

// refreshConnector recomputes c's geometry in place from the store's current
// shape positions. Dangling endpoints (possible transiently during batch
// operations) leave the connector untouched.
func (s *Store) refreshConnector(c *entity.Connector) {
	src := s.findShape(c.Source.ShapeID)
	dst := s.findShape(c.Target.ShapeID)
	if src == nil || dst == nil {
		return
	}
	*c = connectorAfterMove(c, src.Bounds(), dst.Bounds())
}
