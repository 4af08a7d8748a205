/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mermaid

import (
	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
	"diagramstudio/internal/toolset"
)

// Layout spacing between node centers.
const (
	rankSpacing = 220
	laneSpacing = 130
)

// ToEntities converts a parsed flowchart using only the built-in palettes.
func ToEntities(doc Document) ([]*entity.Shape, []*entity.Connector) {
	return ToEntitiesWithTools(doc, toolset.NewSet())
}

// ToEntitiesWithTools converts a parsed flowchart into canvas entities with a
// simple layered layout: nodes are ranked by BFS depth from the roots, ranks
// advance along the flow direction, and siblings fan out across it. The result
// is a starting arrangement, not a final one; users drag from there.
//
// Node brackets resolve to tools through the palette set ("decision" for
// diamonds, "terminal" for circles, "process" otherwise), so projects can
// restyle imports by shadowing those tools.
func ToEntitiesWithTools(doc Document, tools *toolset.Set) ([]*entity.Shape, []*entity.Connector) {
	ranks := assignRanks(doc)

	// Group nodes by rank, preserving document order within each rank.
	perRank := map[int][]int{}
	maxRank := 0
	for i, n := range doc.Nodes {
		r := ranks[n.ID]
		perRank[r] = append(perRank[r], i)
		if r > maxRank {
			maxRank = r
		}
	}

	shapes := make([]*entity.Shape, len(doc.Nodes))
	idMap := make(map[string]string, len(doc.Nodes))
	for r := 0; r <= maxRank; r++ {
		for lane, i := range perRank[r] {
			n := doc.Nodes[i]
			sh := shapeForNode(n, tools)
			cx := float64(r)*rankSpacing + rankSpacing/2
			cy := float64(lane)*laneSpacing + laneSpacing/2
			if doc.Direction == DirTD {
				cx, cy = cy, cx
			}
			sh.Position = geometry.Point{X: cx - sh.Size.W/2, Y: cy - sh.Size.H/2}
			shapes[i] = sh
			idMap[n.ID] = sh.ID
		}
	}

	srcAnchor, dstAnchor := geometry.AnchorE, geometry.AnchorW
	if doc.Direction == DirTD {
		srcAnchor, dstAnchor = geometry.AnchorS, geometry.AnchorN
	}
	var connectors []*entity.Connector
	for _, e := range doc.Edges {
		from, okF := idMap[e.From]
		to, okT := idMap[e.To]
		if !okF || !okT {
			continue
		}
		c := entity.NewConnector(connectorTypeFor(e.Style),
			entity.Endpoint{ShapeID: from, Anchor: srcAnchor},
			entity.Endpoint{ShapeID: to, Anchor: dstAnchor})
		c.Label = e.Label
		connectors = append(connectors, c)
	}
	return shapes, connectors
}

// assignRanks computes BFS depth from the root nodes (no incoming edges).
// Nodes unreachable from any root, e.g. inside a cycle, keep rank 0.
func assignRanks(doc Document) map[string]int {
	incoming := map[string]int{}
	adj := map[string][]string{}
	for _, n := range doc.Nodes {
		incoming[n.ID] = 0
	}
	for _, e := range doc.Edges {
		if _, ok := incoming[e.To]; ok {
			incoming[e.To]++
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	ranks := map[string]int{}
	var queue []string
	for _, n := range doc.Nodes {
		if incoming[n.ID] == 0 {
			ranks[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if ranks[id]+1 > len(doc.Nodes) { // cycle guard
			continue
		}
		for _, next := range adj[id] {
			if r, ok := ranks[next]; !ok || ranks[id]+1 > r {
				ranks[next] = ranks[id] + 1
				queue = append(queue, next)
			}
		}
	}
	return ranks
}

func shapeForNode(n Node, tools *toolset.Set) *entity.Shape {
	var toolID string
	switch n.Shape {
	case NodeDiamond:
		toolID = "decision"
	case NodeCircle:
		toolID = "terminal"
	default:
		toolID = "process"
	}
	sh := entity.NewShapeFromTool(tools.Lookup(toolID), geometry.Point{})
	sh.Text = n.Text
	return sh
}

func connectorTypeFor(s EdgeStyle) entity.ConnectorType {
	switch s {
	case EdgeDotted:
		return entity.ConnectorCurved
	case EdgeThick:
		return entity.ConnectorOrthogonal
	default:
		return entity.ConnectorStraight
	}
}
