/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Value types for window geometry in screen points. The coordinate space has
// its origin at the bottom-left corner and y grows upward.

import "math"

// SnapTolerance is the distance below which a computed dimension is pulled
// onto its reference value instead of being rounded.
const SnapTolerance = 2.0

// Point is a 2D point.
type Point struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by its bottom-left corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }
func S(w, h float64) Size       { return Size{W: w, H: h} }

func (s Size) Add(o Size) Size        { return Size{W: s.W + o.W, H: s.H + o.H} }
func (s Size) Sub(o Size) Size        { return Size{W: s.W - o.W, H: s.H - o.H} }
func (s Size) Scale(f float64) Size   { return Size{W: s.W * f, H: s.H * f} }
func (s Size) IsZero() bool           { return s.W == 0 && s.H == 0 }
func (s Size) Rounded() Size          { return Size{W: math.Round(s.W), H: math.Round(s.H)} }
func (s Size) NonNegative() Size      { return Size{W: math.Max(0, s.W), H: math.Max(0, s.H)} }
func (s Size) Fits(in Size) bool      { return s.W <= in.W && s.H <= in.H }

func (s Size) WithWidth(w float64) Size  { return Size{W: w, H: s.H} }
func (s Size) WithHeight(h float64) Size { return Size{W: s.W, H: h} }

// AspectRatio is W/H, or 0 when the height is not positive.
func (s Size) AspectRatio() float64 {
	if s.H <= 0 {
		return 0
	}
	return s.W / s.H
}

// ClampedTo limits each dimension to [lo, hi]. When lo exceeds hi on an axis
// the lower bound wins.
func (s Size) ClampedTo(lo, hi Size) Size {
	return Size{W: clamp(s.W, lo.W, hi.W), H: clamp(s.H, lo.H, hi.H)}
}

// AtLeast raises each dimension to the matching one in lo.
func (s Size) AtLeast(lo Size) Size {
	return Size{W: math.Max(s.W, lo.W), H: math.Max(s.H, lo.H)}
}

// AtMost lowers each dimension to the matching one in hi.
func (s Size) AtMost(hi Size) Size {
	return Size{W: math.Min(s.W, hi.W), H: math.Min(s.H, hi.H)}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func (r Rect) MinX() float64   { return r.X }
func (r Rect) MinY() float64   { return r.Y }
func (r Rect) MaxX() float64   { return r.X + r.W }
func (r Rect) MaxY() float64   { return r.Y + r.H }
func (r Rect) MidX() float64   { return r.X + r.W/2 }
func (r Rect) MidY() float64   { return r.Y + r.H/2 }
func (r Rect) Origin() Point   { return Point{r.X, r.Y} }
func (r Rect) Size() Size      { return Size{W: r.W, H: r.H} }
func (r Rect) Center() Point   { return Point{r.MidX(), r.MidY()} }
func (r Rect) IsEmpty() bool   { return r.W <= 0 || r.H <= 0 }

func (r Rect) WithSize(s Size) Rect      { return Rect{X: r.X, Y: r.Y, W: s.W, H: s.H} }
func (r Rect) WithOrigin(p Point) Rect   { return Rect{X: p.X, Y: p.Y, W: r.W, H: r.H} }
func (r Rect) Offset(dx, dy float64) Rect { return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H} }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.MaxX() && p.Y <= r.MaxY()
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.MaxX(), o.MaxX())
	maxY := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Intersection returns the overlapping area, or the zero Rect if there is none.
func (r Rect) Intersection(o Rect) Rect {
	if !r.Intersects(o) {
		return Rect{}
	}
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// CenteredResize changes the size while keeping the center in place. The
// origin moves by whole points so an integral frame stays integral.
func (r Rect) CenteredResize(s Size) Rect {
	dx := math.Round((s.W - r.W) / 2)
	dy := math.Round((s.H - r.H) / 2)
	return Rect{X: r.X - dx, Y: r.Y - dy, W: s.W, H: s.H}
}

// CenteredIn places r at the center of container without changing its size.
func (r Rect) CenteredIn(container Rect) Rect {
	return Rect{
		X: container.X + math.Round((container.W-r.W)/2),
		Y: container.Y + math.Round((container.H-r.H)/2),
		W: r.W,
		H: r.H,
	}
}

// ConstrainedIn shrinks r to at most the container size and then slides it
// so that it lies inside container.
func (r Rect) ConstrainedIn(container Rect) Rect {
	out := r
	if out.W > container.W {
		out.W = container.W
	}
	if out.H > container.H {
		out.H = container.H
	}
	if out.X < container.X {
		out.X = container.X
	} else if out.MaxX() > container.MaxX() {
		out.X = container.MaxX() - out.W
	}
	if out.Y < container.Y {
		out.Y = container.Y
	} else if out.MaxY() > container.MaxY() {
		out.Y = container.MaxY() - out.H
	}
	return out
}

// Snap pulls value onto reference when they are within SnapTolerance,
// otherwise it rounds to the nearest whole point.
func Snap(value, reference float64) float64 {
	if math.Abs(value-reference) < SnapTolerance {
		return reference
	}
	return math.Round(value)
}

// SnapSize applies Snap per dimension.
func SnapSize(s, reference Size) Size {
	return Size{W: Snap(s.W, reference.W), H: Snap(s.H, reference.H)}
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
