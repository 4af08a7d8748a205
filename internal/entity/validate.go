/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package entity

import (
	"fmt"

	"diagramstudio/internal/geometry"
)

// Context carries the shape lookup a validation pass runs against. Build it
// fresh from the current shape list for every call; shapes can be added or
// removed between validations, so a cached context goes stale.
type Context struct {
	shapes map[string]*Shape
}

// NewContext indexes the given shapes by id.
func NewContext(shapes []*Shape) *Context {
	m := make(map[string]*Shape, len(shapes))
	for _, s := range shapes {
		m[s.ID] = s
	}
	return &Context{shapes: m}
}

// Shape returns the shape with the given id, if present.
func (c *Context) Shape(id string) (*Shape, bool) {
	s, ok := c.shapes[id]
	return s, ok
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool
	Errors []string
}

func invalid(format string, args ...any) Result {
	return Result{Valid: false, Errors: []string{fmt.Sprintf(format, args...)}}
}

// Validate checks an entity against structural rules. Shapes carry no
// cross-entity constraints and are always structurally valid. Connectors are
// valid only if both endpoint shape ids exist in the context; geometry is
// never part of validity.
func Validate(e Entity, ctx *Context) Result {
	switch v := e.(type) {
	case *Shape:
		return Result{Valid: true}
	case *Connector:
		var errs []string
		if _, ok := ctx.Shape(v.Source.ShapeID); !ok {
			errs = append(errs, fmt.Sprintf("source shape %q not found", v.Source.ShapeID))
		}
		if _, ok := ctx.Shape(v.Target.ShapeID); !ok {
			errs = append(errs, fmt.Sprintf("target shape %q not found", v.Target.ShapeID))
		}
		if !v.Source.Anchor.Valid() {
			errs = append(errs, fmt.Sprintf("invalid source anchor %q", v.Source.Anchor))
		}
		if !v.Target.Anchor.Valid() {
			errs = append(errs, fmt.Sprintf("invalid target anchor %q", v.Target.Anchor))
		}
		return Result{Valid: len(errs) == 0, Errors: errs}
	default:
		// unreachable: Entity is sealed to the two variants above
		return invalid("unknown entity kind %T", e)
	}
}

// FindEntitiesInBox returns every entity overlapping the selection box.
// Selection is inclusive of partial overlap: a shape is matched by
// rectangle intersection with its bounds, a connector by intersection with
// its (possibly auto-updated) cached bounding geometry.
func FindEntitiesInBox(shapes []*Shape, connectors []*Connector, box geometry.Rect) []Entity {
	box = box.Normalized()
	var out []Entity
	for _, s := range shapes {
		if s.Bounds().Intersects(box) {
			out = append(out, s)
		}
	}
	for _, c := range connectors {
		if c.Bounds.Intersects(box) {
			out = append(out, c)
		}
	}
	return out
}
