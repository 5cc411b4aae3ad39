/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export draws diagrams of a player window geometry.
package export

import (
	"errors"
	"fmt"
	"math"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/screen"
)

// ErrNothingToRender is returned when a geometry has no drawable area.
var ErrNothingToRender = errors.New("nothing to render")

// Options controls diagram output.
// - Scale: output units per screen point; values <= 0 mean 1
// - Screen: when set, its frame and visible frame are drawn behind the window
// - IncludeLabels: write the box names and sizes
type Options struct {
	Scale         float64
	Screen        *screen.Screen
	IncludeLabels bool
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// Kind identifies what a Box represents.
type Kind int

const (
	KindScreen Kind = iota
	KindVisibleFrame
	KindWindow
	KindOutsideBar
	KindViewport
	KindInsideBar
	KindVideo
)

var kindNames = []string{"screen", "visible", "window", "outside bar", "viewport", "inside bar", "video"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Box is one rectangle of the diagram in screen coordinates.
type Box struct {
	Kind  Kind
	Label string
	Rect  geom.Rect
}

// Boxes lists the rectangles of g back to front. Empty bars are skipped.
func Boxes(g pwin.Geometry, scr *screen.Screen) []Box {
	var out []Box
	if scr != nil {
		out = append(out,
			Box{Kind: KindScreen, Label: "screen " + scr.ID, Rect: scr.Frame},
			Box{Kind: KindVisibleFrame, Label: "visible frame", Rect: scr.VisibleFrame},
		)
	}
	win := g.WindowFrame
	out = append(out, Box{Kind: KindWindow, Label: "window " + sizeLabel(win.Size()), Rect: win})

	vp := g.ViewportFrameInWindow().Offset(win.X, win.Y)
	ob := g.OutsideBars
	add := func(k Kind, label string, r geom.Rect) {
		if !r.IsEmpty() {
			out = append(out, Box{Kind: k, Label: label, Rect: r})
		}
	}
	add(KindOutsideBar, "top bar", geom.R(vp.X, vp.MaxY(), vp.W, ob.Top))
	add(KindOutsideBar, "bottom bar", geom.R(vp.X, vp.Y-ob.Bottom, vp.W, ob.Bottom))
	add(KindOutsideBar, "leading sidebar", geom.R(win.X, vp.Y-ob.Bottom, ob.Leading, ob.TotalHeight()+vp.H))
	add(KindOutsideBar, "trailing sidebar", geom.R(vp.MaxX(), vp.Y-ob.Bottom, ob.Trailing, ob.TotalHeight()+vp.H))

	out = append(out, Box{Kind: KindViewport, Label: "viewport " + sizeLabel(vp.Size()), Rect: vp})

	ib := g.InsideBars
	add(KindInsideBar, "top bar", geom.R(vp.X, vp.MaxY()-ib.Top, vp.W, ib.Top))
	add(KindInsideBar, "bottom bar", geom.R(vp.X, vp.Y, vp.W, ib.Bottom))
	add(KindInsideBar, "leading sidebar", geom.R(vp.X, vp.Y, ib.Leading, vp.H))
	add(KindInsideBar, "trailing sidebar", geom.R(vp.MaxX()-ib.Trailing, vp.Y, ib.Trailing, vp.H))

	add(KindVideo, "video "+sizeLabel(g.VideoSize), g.VideoFrameInScreen())
	return out
}

// Bounds is the union of all boxes.
func Bounds(boxes []Box) geom.Rect {
	var b geom.Rect
	for i, bx := range boxes {
		if i == 0 {
			b = bx.Rect
			continue
		}
		b = b.Union(bx.Rect)
	}
	return b
}

// toCanvas maps r from bottom-left screen space into a top-left canvas
// whose origin is the top-left corner of bounds.
func toCanvas(r, bounds geom.Rect, scale float64) geom.Rect {
	return geom.R((r.X-bounds.X)*scale, (bounds.MaxY()-r.MaxY())*scale, r.W*scale, r.H*scale)
}

func sizeLabel(s geom.Size) string {
	return fmt.Sprintf("%gx%g", math.Round(s.W*10)/10, math.Round(s.H*10)/10)
}
