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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
)

type boxStyle struct {
	fill   color.RGBA
	stroke color.RGBA
}

var styles = map[Kind]boxStyle{
	KindScreen:       {fill: color.RGBA{230, 230, 230, 255}, stroke: color.RGBA{120, 120, 120, 255}},
	KindVisibleFrame: {fill: color.RGBA{245, 245, 245, 255}, stroke: color.RGBA{160, 160, 160, 255}},
	KindWindow:       {fill: color.RGBA{40, 40, 40, 255}, stroke: color.RGBA{0, 0, 0, 255}},
	KindOutsideBar:   {fill: color.RGBA{90, 110, 150, 255}, stroke: color.RGBA{50, 70, 110, 255}},
	KindViewport:     {fill: color.RGBA{0, 0, 0, 255}, stroke: color.RGBA{200, 200, 0, 255}},
	KindInsideBar:    {fill: color.RGBA{150, 90, 90, 160}, stroke: color.RGBA{200, 60, 60, 255}},
	KindVideo:        {fill: color.RGBA{60, 140, 70, 255}, stroke: color.RGBA{120, 220, 130, 255}},
}

var labelColor = color.RGBA{255, 255, 255, 255}

// Style returns the fill and stroke colors used for boxes of kind k.
func Style(k Kind) (fill, stroke color.RGBA) {
	st := styles[k]
	return st.fill, st.stroke
}

// RenderPNG draws g as a PNG image to w.
func RenderPNG(w io.Writer, g pwin.Geometry, opt Options) error {
	boxes := Boxes(g, opt.Screen)
	bounds := Bounds(boxes)
	if bounds.IsEmpty() {
		return ErrNothingToRender
	}
	scale := opt.scale()
	pixW := int(math.Ceil(bounds.W * scale))
	pixH := int(math.Ceil(bounds.H * scale))

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	for _, b := range boxes {
		st := styles[b.Kind]
		r := pixelRect(toCanvas(b.Rect, bounds, scale))
		draw.Draw(img, r, &image.Uniform{C: st.fill}, image.Point{}, draw.Over)
		strokeRect(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, st.stroke)
		if opt.IncludeLabels {
			drawLabel(img, r, b.Label)
		}
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNGFile renders g into a PNG file at path, creating parent directories.
func WritePNGFile(path string, g pwin.Geometry, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := RenderPNG(f, g, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func pixelRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

// drawLabel writes text in the top-left corner of r when it fits vertically.
func drawLabel(img *image.RGBA, r image.Rectangle, text string) {
	face := basicfont.Face7x13
	if r.Dy() < face.Height+2 || text == "" {
		return
	}
	// SubImage clips long labels to the box.
	d := font.Drawer{
		Dst:  img.SubImage(r).(*image.RGBA),
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(r.Min.X+3, r.Min.Y+face.Ascent+2),
	}
	d.DrawString(text)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
