/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/storage"
)

// SVGOptions controls SVG export behavior. The coordinate system matches the
// model (points); a viewBox covers the content bounds plus margin.
type SVGOptions struct {
	Margin   float64
	FontSize float64
}

// ExportDiagramSVG renders the diagram to a single SVG file at outPath.
// A relative outPath is placed under the project's exports folder.
func ExportDiagramSVG(dh *storage.DiagramHandle, outPath string, opt SVGOptions) error {
	if dh == nil {
		return fmt.Errorf("diagram handle is nil")
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	fontSize := opt.FontSize
	if fontSize <= 0 {
		fontSize = 11
	}

	content := contentBounds(dh.Diagram)
	viewX := content.X - margin
	viewY := content.Y - margin
	viewW := content.W + 2*margin
	viewH := content.H + 2*margin

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"%g %g %g %g\">\n",
		viewW, viewH, viewX, viewY, viewW, viewH)
	wf("  <defs>\n")
	wf("    <marker id=\"arrow\" markerWidth=\"10\" markerHeight=\"8\" refX=\"9\" refY=\"4\" orient=\"auto\">\n")
	wf("      <path d=\"M0,0 L9,4 L0,8\" fill=\"none\" stroke=\"#000000\"/>\n")
	wf("    </marker>\n")
	wf("  </defs>\n")
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", viewX, viewY, viewW, viewH)

	for _, c := range dh.Diagram.Connectors {
		p1, p2 := connectorEnds(dh.Diagram, c)
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#000000\" stroke-width=\"1\"%s marker-end=\"url(#arrow)\"/>\n",
			p1.X, p1.Y, p2.X, p2.Y, dashFor(c.Type))
		if c.Label != "" {
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica\" font-size=\"%g\" text-anchor=\"middle\">%s</text>\n",
				(p1.X+p2.X)/2, (p1.Y+p2.Y)/2-3, fontSize-2, xmlEscape(c.Label))
		}
	}

	for _, sh := range dh.Diagram.Shapes {
		fill := shapeFill(sh)
		stroke, width := shapeStroke(sh)
		style := fmt.Sprintf(" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"", fill.hex(), stroke.hex(), width)
		b := sh.Bounds()
		switch sh.Type {
		case entity.ShapeEvent:
			c := b.Center()
			wf("  <ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\"%s/>\n", c.X, c.Y, b.W/2, b.H/2, style)
		case entity.ShapeGateway:
			wf("  <polygon points=\"%g,%g %g,%g %g,%g %g,%g\"%s/>\n",
				b.X+b.W/2, b.Y, b.X+b.W, b.Y+b.H/2, b.X+b.W/2, b.Y+b.H, b.X, b.Y+b.H/2, style)
		default:
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s/>\n", b.X, b.Y, b.W, b.H, style)
		}
		if sh.Text != "" {
			c := b.Center()
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica\" font-size=\"%g\" text-anchor=\"middle\" dominant-baseline=\"middle\">%s</text>\n",
				c.X, c.Y, fontSize, xmlEscape(sh.Text))
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("render svg: %w", werr)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func dashFor(t entity.ConnectorType) string {
	if t == entity.ConnectorCurved {
		return " stroke-dasharray=\"6 4\""
	}
	return ""
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
