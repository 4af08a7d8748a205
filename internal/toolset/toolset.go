/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package toolset loads and resolves shape palettes: named collections of tool
// definitions the editor offers for shape creation. Palettes come from YAML
// files in a project's tools directory, layered over the built-in defaults.
package toolset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"diagramstudio/internal/entity"
	applog "diagramstudio/internal/log"
)

// Palette is a named set of tools keyed by tool id.
type Palette struct {
	Name  string                    `yaml:"name"`
	Tools map[string]entity.ToolDef `yaml:"tools"`
}

// Set resolves tool lookups across every loaded palette, built-ins last.
type Set struct {
	palettes []Palette
}

// Builtin returns the default palettes available without any project files.
func Builtin() []Palette {
	return []Palette{
		{
			Name: "flowchart",
			Tools: map[string]entity.ToolDef{
				"process":  {ShapeType: "rectangle", Width: 120, Height: 60},
				"decision": {ShapeType: "gateway", Width: 80, Height: 80},
				"terminal": {ShapeType: "event", Width: 60, Height: 40},
			},
		},
		{
			Name: "bpmn",
			Tools: map[string]entity.ToolDef{
				"task":        {ShapeType: "task", Width: 120, Height: 80},
				"gateway":     {ShapeType: "gateway", Width: 50, Height: 50},
				"start-event": {ShapeType: "event", Subtype: "start", Width: 36, Height: 36},
				"end-event":   {ShapeType: "event", Subtype: "end", Width: 36, Height: 36, StrokeWidth: 3},
				"pool":        {ShapeType: "pool", Width: 600, Height: 200},
			},
		},
	}
}

// NewSet builds a lookup set from the given palettes plus the built-ins.
// Earlier palettes shadow later ones, so project palettes override defaults.
func NewSet(palettes ...Palette) *Set {
	return &Set{palettes: append(append([]Palette{}, palettes...), Builtin()...)}
}

// LoadDir reads every *.yaml palette file in dir. A missing directory yields
// no palettes and no error; a malformed file is skipped with a logged warning
// so one bad palette cannot take down the editor.
func LoadDir(dir string) ([]Palette, error) {
	l := applog.WithComponent("toolset")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tools dir: %w", err)
	}
	var out []Palette
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := LoadFile(path)
		if err != nil {
			l.Warn("skipping malformed palette", slog.String("path", path), slog.Any("err", err))
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LoadFile parses one palette file.
func LoadFile(path string) (Palette, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, fmt.Errorf("read palette: %w", err)
	}
	var p Palette
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Palette{}, fmt.Errorf("parse palette %s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	return p, nil
}

// Save writes a palette as YAML.
func Save(p Palette, path string) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode palette: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure tools dir: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Lookup resolves a tool id, searching palettes in order. An unknown id falls
// back to the default rectangle tool with a logged warning; lookup never fails
// so shape creation cannot.
func (s *Set) Lookup(toolID string) entity.ToolDef {
	for _, p := range s.palettes {
		if t, ok := p.Tools[toolID]; ok {
			return t
		}
	}
	applog.WithComponent("toolset").Warn("unknown tool, using default rectangle",
		slog.String("tool", toolID),
		slog.String("code", string(entity.CodeFallbackDefault)))
	return entity.ToolDef{ShapeType: string(entity.ShapeRectangle), Width: 120, Height: 60}
}

// Palettes returns the palettes in lookup order.
func (s *Set) Palettes() []Palette { return s.palettes }
