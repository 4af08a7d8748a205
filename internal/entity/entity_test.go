/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"testing"

	"diagramstudio/internal/geometry"
)

func newTestShape(id string, x, y, w, h float64) *Shape {
	return &Shape{
		ID:       id,
		Type:     ShapeTask,
		Position: geometry.Point{X: x, Y: y},
		Size:     geometry.Size{W: w, H: h},
	}
}

func TestShapeFactoryKnownType(t *testing.T) {
	tool := ToolDef{ShapeType: "gateway", Width: 50, Height: 50, FillColor: "#ffffff", StrokeColor: "#333333", StrokeWidth: 2}
	s := NewShapeFromTool(tool, geometry.Point{X: 10, Y: 20})
	if s.Type != ShapeGateway {
		t.Fatalf("type: got %q", s.Type)
	}
	if s.ID == "" {
		t.Fatalf("expected generated id")
	}
	if s.Position.X != 10 || s.Position.Y != 20 {
		t.Fatalf("position: got %+v", s.Position)
	}
	if s.Style == nil || s.Style.Fill != "#ffffff" || s.Style.StrokeWidth != 2 {
		t.Fatalf("style overrides not applied: %+v", s.Style)
	}
}

func TestShapeFactoryUnknownTypeFallsBack(t *testing.T) {
	s := NewShapeFromTool(ToolDef{ShapeType: "hexagon", Width: 40, Height: 40}, geometry.Point{})
	if s.Type != ShapeRectangle {
		t.Fatalf("expected rectangle fallback, got %q", s.Type)
	}
}

func TestShapeFactoryDefaultDimensions(t *testing.T) {
	s := NewShapeFromTool(ToolDef{ShapeType: "task"}, geometry.Point{})
	if s.Size.W <= 0 || s.Size.H <= 0 {
		t.Fatalf("expected positive default dimensions, got %+v", s.Size)
	}
}

func TestNewShapeAtAnchorTarget(t *testing.T) {
	target := geometry.Point{X: 300, Y: 200}
	s := NewShapeAtAnchorTarget(ToolDef{ShapeType: "event", Width: 40, Height: 40}, target, geometry.AnchorW)
	if got := geometry.AnchorPoint(s.Bounds(), geometry.AnchorW); got != target {
		t.Fatalf("anchor did not land on target: got %+v", got)
	}
}

func TestValidateConnectorEndpoints(t *testing.T) {
	a := newTestShape("a", 0, 0, 100, 60)
	b := newTestShape("b", 200, 0, 100, 60)
	ctx := NewContext([]*Shape{a, b})

	ok := NewConnector(ConnectorStraight, Endpoint{ShapeID: "a", Anchor: geometry.AnchorE}, Endpoint{ShapeID: "b", Anchor: geometry.AnchorW})
	if res := Validate(ok, ctx); !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}

	dangling := NewConnector(ConnectorStraight, Endpoint{ShapeID: "a", Anchor: geometry.AnchorE}, Endpoint{ShapeID: "ghost", Anchor: geometry.AnchorW})
	if res := Validate(dangling, ctx); res.Valid {
		t.Fatalf("expected invalid for dangling target")
	}

	badAnchor := NewConnector(ConnectorStraight, Endpoint{ShapeID: "a", Anchor: "mid"}, Endpoint{ShapeID: "b", Anchor: geometry.AnchorW})
	if res := Validate(badAnchor, ctx); res.Valid {
		t.Fatalf("expected invalid for unknown anchor")
	}
}

func TestValidateShapeAlwaysValid(t *testing.T) {
	ctx := NewContext(nil)
	if res := Validate(newTestShape("x", -50, -50, 10, 10), ctx); !res.Valid {
		t.Fatalf("shapes carry no cross-entity constraints: %v", res.Errors)
	}
}

func TestContextNotCachedAcrossMutations(t *testing.T) {
	shapes := []*Shape{newTestShape("a", 0, 0, 10, 10)}
	c := NewConnector(ConnectorStraight, Endpoint{ShapeID: "a", Anchor: geometry.AnchorE}, Endpoint{ShapeID: "b", Anchor: geometry.AnchorW})
	if res := Validate(c, NewContext(shapes)); res.Valid {
		t.Fatalf("b absent, expected invalid")
	}
	shapes = append(shapes, newTestShape("b", 50, 0, 10, 10))
	if res := Validate(c, NewContext(shapes)); !res.Valid {
		t.Fatalf("fresh context should see b: %v", res.Errors)
	}
}

func TestFindEntitiesInBox(t *testing.T) {
	inside := newTestShape("inside", 0, 0, 100, 100)
	outside := newTestShape("outside", 500, 500, 50, 50)
	conn := NewConnector(ConnectorStraight, Endpoint{ShapeID: "inside", Anchor: geometry.AnchorE}, Endpoint{ShapeID: "outside", Anchor: geometry.AnchorW})
	conn.Bounds = geometry.R(100, 50, 400, 475)

	// partial overlap selects
	got := FindEntitiesInBox([]*Shape{inside, outside}, []*Connector{conn}, geometry.R(50, 50, 200, 200))
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.EntityID()] = true
	}
	if !ids["inside"] {
		t.Fatalf("partially overlapped shape not selected")
	}
	if ids["outside"] {
		t.Fatalf("disjoint shape selected")
	}
	if !ids[conn.ID] {
		t.Fatalf("connector overlapping box not selected")
	}

	// no overlap selects nothing
	if got := FindEntitiesInBox([]*Shape{inside}, nil, geometry.R(200, 200, 10, 10)); len(got) != 0 {
		t.Fatalf("expected empty selection, got %d entities", len(got))
	}
}

func TestCloneIndependence(t *testing.T) {
	s := newTestShape("s", 1, 2, 3, 4)
	s.Style = &Style{Fill: "#fff"}
	c := s.Clone()
	c.Style.Fill = "#000"
	c.Position.X = 99
	if s.Style.Fill != "#fff" || s.Position.X != 1 {
		t.Fatalf("clone mutated the original: %+v", s)
	}

	auto := false
	conn := &Connector{ID: "c", Type: ConnectorCurved, AutoUpdate: &auto}
	cc := conn.Clone()
	*cc.AutoUpdate = true
	if *conn.AutoUpdate {
		t.Fatalf("clone shares AutoUpdate pointer")
	}
}

func TestConnectorAutoUpdatesDefault(t *testing.T) {
	c := &Connector{ID: "c"}
	if !c.AutoUpdates() {
		t.Fatalf("nil AutoUpdate must mean enabled")
	}
	f := false
	c.AutoUpdate = &f
	if c.AutoUpdates() {
		t.Fatalf("explicit false must disable auto update")
	}
}
