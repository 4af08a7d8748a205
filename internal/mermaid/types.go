/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mermaid converts between canvas entities and Mermaid flowchart
// text, the interchange format for clipboard round-trips and text-based
// diagram generation.
package mermaid

// Direction is the flowchart layout direction.
type Direction string

const (
	DirLR Direction = "LR"
	DirTD Direction = "TD"
)

// NodeShape classifies the Mermaid node bracket syntax.
type NodeShape string

const (
	NodeRect    NodeShape = "rect"    // id[Text]
	NodeRound   NodeShape = "round"   // id(Text)
	NodeDiamond NodeShape = "diamond" // id{Text}
	NodeCircle  NodeShape = "circle"  // id((Text))
)

// Node is one flowchart node.
type Node struct {
	ID    string
	Shape NodeShape
	Text  string
}

// EdgeStyle classifies the Mermaid arrow syntax.
type EdgeStyle string

const (
	EdgeSolid  EdgeStyle = "solid"  // -->
	EdgeDotted EdgeStyle = "dotted" // -.->
	EdgeThick  EdgeStyle = "thick"  // ==>
)

// Edge is one directed flowchart edge.
type Edge struct {
	From  string
	To    string
	Style EdgeStyle
	Label string
}

// Document is a parsed flowchart.
type Document struct {
	Direction Direction
	Nodes     []Node
	Edges     []Edge
}

// Error reports a parse problem with its source position.
type Error struct {
	Line    int
	Message string
}
