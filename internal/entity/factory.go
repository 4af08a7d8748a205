/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"log/slog"

	"github.com/google/uuid"

	"diagramstudio/internal/geometry"
	applog "diagramstudio/internal/log"
)

// ToolDef is the external palette configuration consumed by the shape
// factory. Tool files and built-in palettes both produce these.
type ToolDef struct {
	ShapeType   string            `yaml:"shapeType" json:"shapeType"`
	Subtype     string            `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	Width       float64           `yaml:"width" json:"width"`
	Height      float64           `yaml:"height" json:"height"`
	FillColor   string            `yaml:"fillColor,omitempty" json:"fillColor,omitempty"`
	StrokeColor string            `yaml:"strokeColor,omitempty" json:"strokeColor,omitempty"`
	StrokeWidth float64           `yaml:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
	Properties  map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// NewID returns a fresh entity identifier.
func NewID() string { return uuid.NewString() }

// NewShapeFromTool builds a shape from a tool definition, positioned with its
// top-left corner at. An unknown shape type falls back to a default rectangle
// with a logged warning; creation never fails.
func NewShapeFromTool(tool ToolDef, at geometry.Point) *Shape {
	st := ShapeType(tool.ShapeType)
	if !KnownShapeType(st) {
		applog.WithComponent("entity").Warn("unknown shape type, using rectangle",
			slog.String("shapeType", tool.ShapeType),
			slog.String("code", string(CodeFallbackDefault)))
		st = ShapeRectangle
	}
	w, h := tool.Width, tool.Height
	if w <= 0 {
		w = 120
	}
	if h <= 0 {
		h = 60
	}
	s := &Shape{
		ID:       NewID(),
		Type:     st,
		Subtype:  tool.Subtype,
		Position: at,
		Size:     geometry.Size{W: w, H: h},
	}
	if tool.FillColor != "" || tool.StrokeColor != "" || tool.StrokeWidth > 0 {
		s.Style = &Style{Fill: tool.FillColor, Stroke: tool.StrokeColor, StrokeWidth: tool.StrokeWidth}
	}
	if txt, ok := tool.Properties["text"]; ok {
		s.Text = txt
	}
	return s
}

// NewShapeAtAnchorTarget builds a shape so that the named anchor lands exactly
// at target, e.g. when completing a connector onto a newly created shape.
func NewShapeAtAnchorTarget(tool ToolDef, target geometry.Point, anchor geometry.Anchor) *Shape {
	s := NewShapeFromTool(tool, geometry.Point{})
	center := geometry.CenterForAnchorAt(target, s.Size, anchor)
	s.Position = geometry.Point{X: center.X - s.Size.W/2, Y: center.Y - s.Size.H/2}
	return s
}

// NewConnector builds a connector between two endpoints. The cached bounds
// stay zero until the first auto-update pass; callers that know the shape
// positions should refresh them immediately.
func NewConnector(ctype ConnectorType, source, target Endpoint) *Connector {
	switch ctype {
	case ConnectorStraight, ConnectorCurved, ConnectorOrthogonal:
	default:
		applog.WithComponent("entity").Warn("unknown connector type, using straight",
			slog.String("connectorType", string(ctype)),
			slog.String("code", string(CodeFallbackDefault)))
		ctype = ConnectorStraight
	}
	return &Connector{ID: NewID(), Type: ctype, Source: source, Target: target}
}
