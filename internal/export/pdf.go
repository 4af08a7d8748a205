/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"diagramstudio/internal/entity"
	"diagramstudio/internal/geometry"
	"diagramstudio/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points.
// Built-in Helvetica keeps text vector without font embedding.
type PDFOptions struct {
	Margin   float64 // whitespace around content; DefaultMargin when 0
	FontSize float64 // label size; 11 when 0
}

// ExportDiagramPDF renders the diagram to a single-page PDF at outPath.
// A relative outPath is placed under the project's exports folder.
func ExportDiagramPDF(dh *storage.DiagramHandle, outPath string, opt PDFOptions) error {
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
	pageW := content.W + 2*margin
	pageH := content.H + 2*margin
	// Translate model coordinates into page coordinates.
	tx := func(p geometry.Point) (float64, float64) {
		return p.X - content.X + margin, p.Y - content.Y + margin
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(dh.Diagram.Name, false)
	pdf.SetAuthor("Diagram Studio", false)
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	// Connectors first so shapes draw over the line ends.
	pdf.SetDrawColor(black.r, black.g, black.b)
	for _, c := range dh.Diagram.Connectors {
		p1, p2 := connectorEnds(dh.Diagram, c)
		x1, y1 := tx(p1)
		x2, y2 := tx(p2)
		pdf.SetLineWidth(1)
		pdf.Line(x1, y1, x2, y2)
		drawArrowheadPDF(pdf, x1, y1, x2, y2)
		if c.Label != "" {
			pdf.SetFont("Helvetica", "", fontSize-2)
			lw := pdf.GetStringWidth(c.Label)
			pdf.Text((x1+x2)/2-lw/2, (y1+y2)/2-3, c.Label)
			pdf.SetFont("Helvetica", "", fontSize)
		}
	}

	for _, sh := range dh.Diagram.Shapes {
		fill := shapeFill(sh)
		stroke, width := shapeStroke(sh)
		pdf.SetFillColor(fill.r, fill.g, fill.b)
		pdf.SetDrawColor(stroke.r, stroke.g, stroke.b)
		pdf.SetLineWidth(width)

		b := sh.Bounds()
		x, y := tx(sh.Position)
		switch sh.Type {
		case entity.ShapeEvent:
			pdf.Ellipse(x+b.W/2, y+b.H/2, b.W/2, b.H/2, 0, "FD")
		case entity.ShapeGateway:
			pts := []gofpdf.PointType{
				{X: x + b.W/2, Y: y},
				{X: x + b.W, Y: y + b.H/2},
				{X: x + b.W/2, Y: y + b.H},
				{X: x, Y: y + b.H/2},
			}
			pdf.Polygon(pts, "FD")
		default:
			pdf.Rect(x, y, b.W, b.H, "FD")
		}
		if sh.Text != "" {
			pdf.SetTextColor(stroke.r, stroke.g, stroke.b)
			lw := pdf.GetStringWidth(sh.Text)
			pdf.Text(x+b.W/2-lw/2, y+b.H/2+fontSize*0.35, sh.Text)
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// drawArrowheadPDF draws a small open arrowhead at (x2,y2) pointing away from
// (x1,y1).
func drawArrowheadPDF(pdf *gofpdf.Fpdf, x1, y1, x2, y2 float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	const size = 8.0
	const spread = 0.45
	for _, a := range []float64{angle + math.Pi - spread, angle + math.Pi + spread} {
		pdf.Line(x2, y2, x2+size*math.Cos(a), y2+size*math.Sin(a))
	}
}
