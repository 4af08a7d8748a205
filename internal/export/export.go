/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders diagrams to portable output formats (PDF, SVG).
// Rendering is vector throughout; coordinates map 1:1 from the model (points)
// with a margin added around the content bounds.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
	"diagramstudio/internal/storage"
)

// DefaultMargin is the whitespace added around the diagram content, in points.
const DefaultMargin = 40.0

type rgb struct{ r, g, b int }

var (
	black = rgb{0, 0, 0}
	white = rgb{255, 255, 255}
)

// parseColor reads a #rrggbb hex color; anything else yields the fallback.
func parseColor(s string, fallback rgb) rgb {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return fallback
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

func (c rgb) hex() string { return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b) }

func shapeFill(sh *entity.Shape) rgb {
	if sh.Style != nil && sh.Style.Fill != "" {
		return parseColor(sh.Style.Fill, white)
	}
	return white
}

func shapeStroke(sh *entity.Shape) (rgb, float64) {
	col, width := black, 1.0
	if sh.Style != nil {
		if sh.Style.Stroke != "" {
			col = parseColor(sh.Style.Stroke, black)
		}
		if sh.Style.StrokeWidth > 0 {
			width = sh.Style.StrokeWidth
		}
	}
	return col, width
}

// contentBounds returns the union of all entity bounds, or a small default
// rect for an empty diagram.
func contentBounds(d storage.Diagram) geometry.Rect {
	var out geometry.Rect
	first := true
	for _, sh := range d.Shapes {
		if first {
			out = sh.Bounds()
			first = false
			continue
		}
		out = out.Union(sh.Bounds())
	}
	for _, c := range d.Connectors {
		if first {
			out = c.Bounds
			first = false
			continue
		}
		out = out.Union(c.Bounds)
	}
	if first {
		return geometry.Rect{W: 100, H: 100}
	}
	return out
}

// connectorEnds resolves a connector's endpoint world positions from the
// diagram's shapes, falling back to the cached bounds corners for dangling
// references.
func connectorEnds(d storage.Diagram, c *entity.Connector) (geometry.Point, geometry.Point) {
	byID := func(id string) *entity.Shape {
		for _, sh := range d.Shapes {
			if sh.ID == id {
				return sh
			}
		}
		return nil
	}
	p1 := geometry.Point{X: c.Bounds.X, Y: c.Bounds.Y}
	p2 := geometry.Point{X: c.Bounds.X + c.Bounds.W, Y: c.Bounds.Y + c.Bounds.H}
	if sh := byID(c.Source.ShapeID); sh != nil {
		p1 = geometry.AnchorPoint(sh.Bounds(), c.Source.Anchor)
	}
	if sh := byID(c.Target.ShapeID); sh != nil {
		p2 = geometry.AnchorPoint(sh.Bounds(), c.Target.Anchor)
	}
	return p1, p2
}
