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
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pwinlayout/internal/pwin"
)

const (
	pdfMargin    = 36.0
	legendRowH   = 14.0
	legendFontSz = 8.0
)

var legendColumns = []struct {
	title string
	width float64
}{
	{"kind", 70}, {"label", 130}, {"x", 55}, {"y", 55}, {"w", 55}, {"h", 55},
}

// RenderPDF writes a one-page PDF to path with the boxes of g drawn to scale
// and a legend table of their coordinates below.
//
// Units are points. The drawing is flipped so that the top of the screen is
// at the top of the page.
func RenderPDF(path string, g pwin.Geometry, opt Options) error {
	boxes := Boxes(g, opt.Screen)
	bounds := Bounds(boxes)
	if bounds.IsEmpty() {
		return ErrNothingToRender
	}
	scale := opt.scale()
	drawW := bounds.W * scale
	drawH := bounds.H * scale

	legendW := 0.0
	for _, c := range legendColumns {
		legendW += c.width
	}
	pageW := math.Max(drawW, legendW) + 2*pdfMargin
	pageH := drawH + 2*pdfMargin + legendRowH*float64(len(boxes)+2)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle("Player window geometry", false)
	pdf.SetAuthor("pwinlayout", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	pdf.SetFont("Helvetica", "", legendFontSz)

	for _, b := range boxes {
		st := styles[b.Kind]
		r := toCanvas(b.Rect, bounds, scale)
		x, y := r.X+pdfMargin, r.Y+pdfMargin
		setFillColor(pdf, st.fill)
		setDrawColor(pdf, st.stroke)
		pdf.SetLineWidth(0.5)
		if st.fill.A < 255 {
			pdf.SetAlpha(float64(st.fill.A)/255, "Normal")
		}
		pdf.Rect(x, y, r.W, r.H, "F")
		pdf.SetAlpha(1, "Normal")
		pdf.Rect(x, y, r.W, r.H, "D")
		if opt.IncludeLabels && r.H >= legendFontSz+4 {
			pdf.SetTextColor(255, 255, 255)
			pdf.Text(x+2, y+legendFontSz+1, b.Label)
		}
	}

	writeLegend(pdf, boxes, pdfMargin, drawH+pdfMargin+legendRowH)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeLegend(pdf *gofpdf.Fpdf, boxes []Box, x, y float64) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", legendFontSz)
	pdf.SetFillColor(225, 225, 225)
	for _, c := range legendColumns {
		pdf.CellFormat(c.width, legendRowH, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(legendRowH)

	pdf.SetFont("Helvetica", "", legendFontSz)
	for _, b := range boxes {
		pdf.SetX(x)
		cells := []string{
			b.Kind.String(), b.Label,
			num(b.Rect.X), num(b.Rect.Y), num(b.Rect.W), num(b.Rect.H),
		}
		for i, c := range legendColumns {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(c.width, legendRowH, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(legendRowH)
	}
}

func num(v float64) string { return fmt.Sprintf("%.1f", v) }

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
