/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package video describes the displayed shape of a video stream: its raw
// pixel size, an optional crop box, an optional display aspect override and a
// clockwise rotation. Values are immutable; updaters return copies.
package video

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pwinlayout/internal/geom"
)

var (
	ErrInvalidCrop   = errors.New("invalid crop")
	ErrInvalidAspect = errors.New("invalid aspect")
)

// Geometry is the video shape consumed by the window geometry engine.
// Crop is given in raw pixels with the origin at the bottom-left of the
// uncropped frame. The zero Rect means no crop.
type Geometry struct {
	RawWidth       float64   `json:"rawWidth"`
	RawHeight      float64   `json:"rawHeight"`
	AspectOverride float64   `json:"aspectOverride,omitempty"`
	Rotation       int       `json:"rotation,omitempty"`
	Crop           geom.Rect `json:"crop"`
}

// New returns an uncropped, unrotated geometry for a raw frame size.
func New(rawWidth, rawHeight float64) Geometry {
	return Geometry{RawWidth: rawWidth, RawHeight: rawHeight}
}

func (g Geometry) RawSize() geom.Size { return geom.Size{W: g.RawWidth, H: g.RawHeight} }
func (g Geometry) HasCrop() bool      { return !g.Crop.IsEmpty() }

// CropRect is the displayed region in raw pixels.
func (g Geometry) CropRect() geom.Rect {
	if g.HasCrop() {
		return g.Crop
	}
	return geom.R(0, 0, g.RawWidth, g.RawHeight)
}

// SizeC is the raw size after crop.
func (g Geometry) SizeC() geom.Size { return g.CropRect().Size() }

// SizeCA is SizeC with the aspect override applied to the width.
func (g Geometry) SizeCA() geom.Size {
	s := g.SizeC()
	if g.AspectOverride > 0 && s.H > 0 {
		s.W = math.Round(s.H * g.AspectOverride)
	}
	return s
}

// SizeCAR is SizeCA turned into display orientation.
func (g Geometry) SizeCAR() geom.Size {
	s := g.SizeCA()
	if g.IsRotatedSideways() {
		return geom.Size{W: s.H, H: s.W}
	}
	return s
}

func (g Geometry) IsRotatedSideways() bool {
	return g.Rotation == 90 || g.Rotation == 270
}

// AspectRatio is the display aspect (width over height) of SizeCAR, or 0 when
// the frame is degenerate.
func (g Geometry) AspectRatio() float64 {
	s := g.SizeCAR()
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W / s.H
}

// IsValid reports whether the geometry has a usable aspect ratio.
func (g Geometry) IsValid() bool {
	ar := g.AspectRatio()
	return ar > 0 && !math.IsInf(ar, 0) && !math.IsNaN(ar)
}

// WithCrop returns a copy cropped to r. r is clipped to the raw frame; an
// empty result removes the crop.
func (g Geometry) WithCrop(r geom.Rect) Geometry {
	g.Crop = r.Intersection(geom.R(0, 0, g.RawWidth, g.RawHeight))
	if g.Crop.IsEmpty() || g.Crop == geom.R(0, 0, g.RawWidth, g.RawHeight) {
		g.Crop = geom.Rect{}
	}
	return g
}

func (g Geometry) WithoutCrop() Geometry {
	g.Crop = geom.Rect{}
	return g
}

func (g Geometry) WithAspectOverride(aspect float64) Geometry {
	if aspect < 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 0
	}
	g.AspectOverride = aspect
	return g
}

// WithRotation normalizes deg to one of 0, 90, 180, 270.
func (g Geometry) WithRotation(deg int) Geometry {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	g.Rotation = (deg / 90) * 90
	return g
}

// RotateRect maps a rect given in raw-frame coordinates into display
// orientation for a clockwise rotation of the frame.
func RotateRect(r geom.Rect, raw geom.Size, rotation int) geom.Rect {
	switch rotation {
	case 90:
		return geom.R(r.Y, raw.W-(r.X+r.W), r.H, r.W)
	case 180:
		return geom.R(raw.W-r.X-r.W, raw.H-r.Y-r.H, r.W, r.H)
	case 270:
		return geom.R(raw.H-(r.Y+r.H), r.X, r.H, r.W)
	default:
		return r
	}
}

// DisplayCropRect is CropRect in display orientation.
func (g Geometry) DisplayCropRect() geom.Rect {
	return RotateRect(g.CropRect(), g.RawSize(), g.Rotation)
}

// CropToAspect returns the largest crop box of the given aspect centered in
// the raw frame.
func (g Geometry) CropToAspect(aspect float64) (geom.Rect, error) {
	if aspect <= 0 || g.RawWidth <= 0 || g.RawHeight <= 0 {
		return geom.Rect{}, fmt.Errorf("%w: aspect %v", ErrInvalidAspect, aspect)
	}
	w, h := g.RawWidth, g.RawHeight
	if w/h > aspect {
		w = math.Round(h * aspect)
	} else {
		h = math.Round(w / aspect)
	}
	return geom.R(math.Floor((g.RawWidth-w)/2), math.Floor((g.RawHeight-h)/2), w, h), nil
}

func (g Geometry) String() string {
	s := fmt.Sprintf("raw=%gx%g", g.RawWidth, g.RawHeight)
	if g.HasCrop() {
		s += fmt.Sprintf(" crop=%gx%g+%g+%g", g.Crop.W, g.Crop.H, g.Crop.X, g.Crop.Y)
	}
	if g.AspectOverride > 0 {
		s += fmt.Sprintf(" aspect=%.4g", g.AspectOverride)
	}
	if g.Rotation != 0 {
		s += fmt.Sprintf(" rot=%d", g.Rotation)
	}
	return s
}

// ParseAspect accepts "W:H", a decimal number, or "default"/"" (no override,
// returned as 0).
func ParseAspect(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "default" || s == "-1" {
		return 0, nil
	}
	if a, b, ok := strings.Cut(s, ":"); ok {
		w, err1 := strconv.ParseFloat(a, 64)
		h, err2 := strconv.ParseFloat(b, 64)
		if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAspect, s)
		}
		return w / h, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspect, s)
	}
	return v, nil
}

var cropRe = regexp.MustCompile(`^(\d+)x(\d+)\+(\d+)\+(\d+)$`)

// ParseCrop reads an mpv crop filter string "WxH+X+Y", whose origin is the
// top-left of the frame, and returns the box in bottom-left coordinates.
func ParseCrop(s string, raw geom.Size) (geom.Rect, error) {
	m := cropRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return geom.Rect{}, fmt.Errorf("%w: %q", ErrInvalidCrop, s)
	}
	var v [4]float64
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return geom.Rect{}, fmt.Errorf("%w: %q: %v", ErrInvalidCrop, s, err)
		}
		v[i] = float64(n)
	}
	w, h, x, y := v[0], v[1], v[2], v[3]
	if w == 0 || h == 0 || x+w > raw.W || y+h > raw.H {
		return geom.Rect{}, fmt.Errorf("%w: %q exceeds %gx%g", ErrInvalidCrop, s, raw.W, raw.H)
	}
	return geom.R(x, raw.H-(y+h), w, h), nil
}

// FormatCrop is the inverse of ParseCrop.
func FormatCrop(r geom.Rect, raw geom.Size) string {
	return fmt.Sprintf("%dx%d+%d+%d", int(r.W), int(r.H), int(r.X), int(raw.H-r.MaxY()))
}
