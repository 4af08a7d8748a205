/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package entity defines the diagram content model: shapes, connectors, and
// the sealed Entity union the selection and command logic operates over.
package entity

import "diagramstudio/internal/geometry"

// Kind discriminates the two entity variants.
type Kind string

const (
	KindShape     Kind = "shape"
	KindConnector Kind = "connector"
)

// Entity is the tagged union of Shape | Connector. The unexported marker
// method seals the interface so type switches over the two variants are
// exhaustive by construction.
type Entity interface {
	EntityID() string
	Kind() Kind
	CloneEntity() Entity
	isEntity()
}

// ShapeType tags the structural role of a shape.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeTask      ShapeType = "task"
	ShapeEvent     ShapeType = "event"
	ShapeGateway   ShapeType = "gateway"
	ShapePool      ShapeType = "pool"
)

// KnownShapeType reports whether t is one of the supported shape types.
func KnownShapeType(t ShapeType) bool {
	switch t {
	case ShapeRectangle, ShapeTask, ShapeEvent, ShapeGateway, ShapePool:
		return true
	}
	return false
}

// Style carries optional per-shape visual overrides. A nil Style means the
// theme defaults apply.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Font carries optional text metadata.
type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

// Shape is a positioned, dimensioned diagram node. Identity is the ID, stable
// across moves and edits; Position is the top-left corner in world coordinates.
type Shape struct {
	ID       string         `json:"id"`
	Type     ShapeType      `json:"type"`
	Subtype  string         `json:"subtype,omitempty"` // e.g. "start"/"end" for events
	Position geometry.Point `json:"position"`
	Size     geometry.Size  `json:"size"`
	Style    *Style         `json:"style,omitempty"`
	Text     string         `json:"text,omitempty"`
	Font     *Font          `json:"font,omitempty"`
}

func (s *Shape) EntityID() string { return s.ID }
func (s *Shape) Kind() Kind       { return KindShape }
func (s *Shape) isEntity()        {}

// Bounds returns the shape's axis-aligned bounding rect.
func (s *Shape) Bounds() geometry.Rect {
	return geometry.Rect{X: s.Position.X, Y: s.Position.Y, W: s.Size.W, H: s.Size.H}
}

// Clone returns a deep copy.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.Style != nil {
		st := *s.Style
		c.Style = &st
	}
	if s.Font != nil {
		f := *s.Font
		c.Font = &f
	}
	return &c
}

func (s *Shape) CloneEntity() Entity { return s.Clone() }

// ConnectorType tags the routing style of a connector.
type ConnectorType string

const (
	ConnectorStraight   ConnectorType = "straight"
	ConnectorCurved     ConnectorType = "curved"
	ConnectorOrthogonal ConnectorType = "orthogonal"
)

// Endpoint references a shape and the anchor the connector attaches to.
type Endpoint struct {
	ShapeID string          `json:"shapeId"`
	Anchor  geometry.Anchor `json:"anchor"`
}

// Connector is a directed edge between two shapes. Bounds is cached geometry
// recomputed whenever an endpoint shape moves; AutoUpdate controls whether
// anchors are also recalculated on such moves (nil means true).
type Connector struct {
	ID         string          `json:"id"`
	Type       ConnectorType   `json:"type"`
	Source     Endpoint        `json:"source"`
	Target     Endpoint        `json:"target"`
	AutoUpdate *bool           `json:"autoUpdate,omitempty"`
	Bounds     geometry.Rect   `json:"bounds"`
	Label      string          `json:"label,omitempty"`
}

func (c *Connector) EntityID() string { return c.ID }
func (c *Connector) Kind() Kind       { return KindConnector }
func (c *Connector) isEntity()        {}

// AutoUpdates reports whether the connector participates in automatic anchor
// recalculation. Only an explicit false disables it.
func (c *Connector) AutoUpdates() bool { return c.AutoUpdate == nil || *c.AutoUpdate }

// Clone returns a deep copy.
func (c *Connector) Clone() *Connector {
	cc := *c
	if c.AutoUpdate != nil {
		v := *c.AutoUpdate
		cc.AutoUpdate = &v
	}
	return &cc
}

func (c *Connector) CloneEntity() Entity { return c.Clone() }
