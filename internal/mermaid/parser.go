/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mermaid

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses Mermaid flowchart text into a Document.
// Supported syntax (minimal):
//   - Header: "flowchart LR|TD" or "graph LR|TD". TB is accepted as TD.
//   - Node definitions: id[Text], id(Text), id{Text}, id((Text)).
//   - Edges: "a --> b", "a -.-> b", "a ==> b", optionally "a -->|label| b".
//     Either side may carry an inline node definition.
//   - Comments: lines starting with "%%".
//
// Unknown lines are reported as errors but never abort the parse; a partial
// diagram beats none when importing hand-written text.
func Parse(input string) (Document, []Error) {
	doc := Document{Direction: DirLR}
	var errs []Error
	seen := map[string]int{} // node id -> index in doc.Nodes

	reHeader := regexp.MustCompile(`^(?i)(flowchart|graph)\s+(LR|RL|TD|TB)\s*$`)
	reNode := regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(\(\(|\[|\(|\{)\s*(.*?)\s*(\)\)|\]|\)|\})\s*$`)
	reEdge := regexp.MustCompile(`^(.+?)\s*(-->|-\.->|==>)\s*(?:\|([^|]*)\|\s*)?(.+)$`)

	addNode := func(n Node) {
		if idx, ok := seen[n.ID]; ok {
			// A later definition with text refines a bare reference.
			if n.Text != "" {
				doc.Nodes[idx] = n
			}
			return
		}
		seen[n.ID] = len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, n)
	}

	parseEndpoint := func(tok string, lineNo int) (string, bool) {
		tok = strings.TrimSpace(tok)
		if m := reNode.FindStringSubmatch(tok); m != nil {
			addNode(Node{ID: m[1], Shape: shapeForBrackets(m[2]), Text: m[3]})
			return m[1], true
		}
		if regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`).MatchString(tok) {
			addNode(Node{ID: tok, Shape: NodeRect})
			return tok, true
		}
		errs = append(errs, Error{Line: lineNo, Message: "cannot parse endpoint: " + tok})
		return "", false
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	sawHeader := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if m := reHeader.FindStringSubmatch(line); m != nil {
			sawHeader = true
			switch strings.ToUpper(m[2]) {
			case "TD", "TB":
				doc.Direction = DirTD
			default:
				doc.Direction = DirLR
			}
			continue
		}
		if m := reEdge.FindStringSubmatch(line); m != nil {
			from, okF := parseEndpoint(m[1], lineNo)
			to, okT := parseEndpoint(m[4], lineNo)
			if okF && okT {
				doc.Edges = append(doc.Edges, Edge{
					From:  from,
					To:    to,
					Style: styleForArrow(m[2]),
					Label: strings.TrimSpace(m[3]),
				})
			}
			continue
		}
		if m := reNode.FindStringSubmatch(line); m != nil {
			addNode(Node{ID: m[1], Shape: shapeForBrackets(m[2]), Text: m[3]})
			continue
		}
		errs = append(errs, Error{Line: lineNo, Message: "unrecognized line: " + line})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	if !sawHeader && (len(doc.Nodes) > 0 || len(doc.Edges) > 0) {
		errs = append(errs, Error{Line: 1, Message: "missing flowchart header, assuming LR"})
	}
	return doc, errs
}

func shapeForBrackets(open string) NodeShape {
	switch open {
	case "((":
		return NodeCircle
	case "{":
		return NodeDiamond
	case "(":
		return NodeRound
	default:
		return NodeRect
	}
}

func styleForArrow(arrow string) EdgeStyle {
	switch arrow {
	case "-.->":
		return EdgeDotted
	case "==>":
		return EdgeThick
	default:
		return EdgeSolid
	}
}
