/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package mermaid

import (
	"strings"
	"testing"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
	"diagramstudio/internal/toolset"
)

func TestLetterID(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for i, want := range cases {
		if got := letterID(i); got != want {
			t.Fatalf("letterID(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestExportBasicFlow(t *testing.T) {
	shapes := []*entity.Shape{
		{ID: "uuid-1", Type: entity.ShapeTask, Text: "Receive order", Size: geometry.Size{W: 120, H: 60}},
		{ID: "uuid-2", Type: entity.ShapeGateway, Text: "In stock?", Size: geometry.Size{W: 80, H: 80}},
		{ID: "uuid-3", Type: entity.ShapeEvent, Text: "Done", Size: geometry.Size{W: 36, H: 36}},
	}
	connectors := []*entity.Connector{
		{ID: "c1", Type: entity.ConnectorStraight,
			Source: entity.Endpoint{ShapeID: "uuid-1", Anchor: geometry.AnchorE},
			Target: entity.Endpoint{ShapeID: "uuid-2", Anchor: geometry.AnchorW}},
		{ID: "c2", Type: entity.ConnectorStraight, Label: "yes",
			Source: entity.Endpoint{ShapeID: "uuid-2", Anchor: geometry.AnchorE},
			Target: entity.Endpoint{ShapeID: "uuid-3", Anchor: geometry.AnchorW}},
	}
	out := Export(shapes, connectors, DirLR)
	for _, want := range []string{
		"flowchart LR",
		"A[Receive order]",
		"B{In stock?}",
		"C((Done))",
		"A --> B",
		"B -->|yes| C",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
}

func TestExportSkipsDanglingConnectors(t *testing.T) {
	shapes := []*entity.Shape{{ID: "s1", Type: entity.ShapeTask, Text: "A"}}
	connectors := []*entity.Connector{
		{ID: "c1", Type: entity.ConnectorStraight,
			Source: entity.Endpoint{ShapeID: "s1", Anchor: geometry.AnchorE},
			Target: entity.Endpoint{ShapeID: "ghost", Anchor: geometry.AnchorW}},
	}
	out := Export(shapes, connectors, DirLR)
	if strings.Contains(out, "-->") {
		t.Fatalf("dangling edge exported:\n%s", out)
	}
}

func TestParseRoundTrip(t *testing.T) {
	src := `flowchart LR
    A[Receive order]
    B{In stock?}
    C((Done))
    A --> B
    B -->|yes| C
    B -.-> A
`
	doc, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if doc.Direction != DirLR {
		t.Fatalf("direction: %s", doc.Direction)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 3 {
		t.Fatalf("nodes=%d edges=%d", len(doc.Nodes), len(doc.Edges))
	}
	if doc.Nodes[1].Shape != NodeDiamond || doc.Nodes[1].Text != "In stock?" {
		t.Fatalf("node B: %+v", doc.Nodes[1])
	}
	if doc.Edges[1].Label != "yes" {
		t.Fatalf("edge label: %+v", doc.Edges[1])
	}
	if doc.Edges[2].Style != EdgeDotted {
		t.Fatalf("edge style: %+v", doc.Edges[2])
	}
}

func TestParseInlineNodeDefsAndBareIDs(t *testing.T) {
	doc, errs := Parse("graph TD\n  start((Go)) --> work[Do it]\n  work --> done\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if doc.Direction != DirTD {
		t.Fatalf("direction: %s", doc.Direction)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes: %+v", doc.Nodes)
	}
	if doc.Nodes[2].ID != "done" || doc.Nodes[2].Shape != NodeRect {
		t.Fatalf("bare id node: %+v", doc.Nodes[2])
	}
}

func TestParseReportsUnknownLinesButContinues(t *testing.T) {
	doc, errs := Parse("flowchart LR\n  ???garbage???\n  A --> B\n")
	if len(errs) == 0 {
		t.Fatalf("expected an error for the garbage line")
	}
	if len(doc.Edges) != 1 {
		t.Fatalf("parse did not continue past the bad line: %+v", doc.Edges)
	}
}

func TestToEntitiesLayoutAndDirection(t *testing.T) {
	doc, _ := Parse("flowchart LR\n  A[One] --> B{Two}\n  A --> C((Three))\n")
	shapes, connectors := ToEntities(doc)
	if len(shapes) != 3 || len(connectors) != 2 {
		t.Fatalf("shapes=%d connectors=%d", len(shapes), len(connectors))
	}
	byText := map[string]*entity.Shape{}
	for _, sh := range shapes {
		byText[sh.Text] = sh
	}
	if byText["Two"].Type != entity.ShapeGateway || byText["Three"].Type != entity.ShapeEvent {
		t.Fatalf("shape types: Two=%s Three=%s", byText["Two"].Type, byText["Three"].Type)
	}
	// LR: successors sit to the right of the root.
	if byText["Two"].Bounds().Center().X <= byText["One"].Bounds().Center().X {
		t.Fatalf("rank 1 not right of rank 0")
	}
	// Siblings fan out vertically.
	if byText["Two"].Bounds().Center().Y == byText["Three"].Bounds().Center().Y {
		t.Fatalf("siblings overlap")
	}
	if connectors[0].Source.Anchor != geometry.AnchorE || connectors[0].Target.Anchor != geometry.AnchorW {
		t.Fatalf("LR anchors: %+v", connectors[0])
	}
}

func TestToEntitiesResolvesThroughToolPalettes(t *testing.T) {
	doc, _ := Parse("flowchart LR\n  A[One] --> B{Two}\n")
	project := toolset.Palette{Name: "house-style", Tools: map[string]entity.ToolDef{
		"process": {ShapeType: string(entity.ShapeTask), Width: 200, Height: 90, FillColor: "#e8f0fe"},
	}}
	shapes, _ := ToEntitiesWithTools(doc, toolset.NewSet(project))
	byText := map[string]*entity.Shape{}
	for _, sh := range shapes {
		byText[sh.Text] = sh
	}
	// Plain nodes pick up the project's "process" tool.
	one := byText["One"]
	if one.Type != entity.ShapeTask || one.Size != (geometry.Size{W: 200, H: 90}) {
		t.Fatalf("project tool not applied: %+v", one)
	}
	if one.Style == nil || one.Style.Fill != "#e8f0fe" {
		t.Fatalf("project tool style not applied: %+v", one.Style)
	}
	// Diamonds still resolve to the builtin "decision" tool.
	if byText["Two"].Type != entity.ShapeGateway {
		t.Fatalf("builtin decision tool not applied: %+v", byText["Two"])
	}
}

func TestToEntitiesSurvivesCycles(t *testing.T) {
	doc, _ := Parse("flowchart LR\n  A --> B\n  B --> A\n")
	shapes, connectors := ToEntities(doc)
	if len(shapes) != 2 || len(connectors) != 2 {
		t.Fatalf("cycle handling: shapes=%d connectors=%d", len(shapes), len(connectors))
	}
}
