/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mermaid

import (
	"fmt"
	"strings"

	"diagramstudio/internal/entity"
)

// Export renders the diagram as Mermaid flowchart text. Shape UUIDs are
// replaced by compact alphabetic ids (A..Z, AA, AB, ...) assigned in z-order,
// so the output stays readable and stable for identical diagrams.
func Export(shapes []*entity.Shape, connectors []*entity.Connector, dir Direction) string {
	if dir != DirTD {
		dir = DirLR
	}
	alias := make(map[string]string, len(shapes))
	for i, sh := range shapes {
		alias[sh.ID] = letterID(i)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "flowchart %s\n", dir)
	for _, sh := range shapes {
		fmt.Fprintf(&b, "    %s\n", nodeDef(alias[sh.ID], sh))
	}
	for _, c := range connectors {
		from, okF := alias[c.Source.ShapeID]
		to, okT := alias[c.Target.ShapeID]
		if !okF || !okT {
			continue
		}
		arrow := arrowFor(c.Type)
		if c.Label != "" {
			fmt.Fprintf(&b, "    %s %s|%s| %s\n", from, arrow, escapeLabel(c.Label), to)
		} else {
			fmt.Fprintf(&b, "    %s %s %s\n", from, arrow, to)
		}
	}
	return b.String()
}

// letterID maps an index to a bijective base-26 alphabetic id: 0->A, 25->Z,
// 26->AA, 27->AB, ...
func letterID(i int) string {
	var buf []byte
	n := i + 1
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

func nodeDef(id string, sh *entity.Shape) string {
	text := sh.Text
	if text == "" {
		text = string(sh.Type)
	}
	text = escapeLabel(text)
	switch sh.Type {
	case entity.ShapeGateway:
		return fmt.Sprintf("%s{%s}", id, text)
	case entity.ShapeEvent:
		return fmt.Sprintf("%s((%s))", id, text)
	default:
		return fmt.Sprintf("%s[%s]", id, text)
	}
}

func arrowFor(t entity.ConnectorType) string {
	switch t {
	case entity.ConnectorCurved:
		return "-.->"
	case entity.ConnectorOrthogonal:
		return "==>"
	default:
		return "-->"
	}
}

// escapeLabel keeps labels on one line and out of the bracket syntax.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "[", "(")
	s = strings.ReplaceAll(s, "]", ")")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
