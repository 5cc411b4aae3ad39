/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pwin computes player window geometry: where the window sits on its
// screen, how much of it the viewport gets after bars are placed outside it,
// and where the video lands inside the viewport. Geometry values are
// immutable; every transformation returns a new value and falls back to the
// receiver when the input cannot produce a sensible result.
package pwin

import (
	"fmt"
	"log/slog"
	"math"

	"pwinlayout/internal/geom"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/video"
)

func logger(op string) *slog.Logger {
	return applog.WithOperation(applog.WithComponent("pwin"), op)
}

// Geometry is the computed layout of one player window.
//
// ViewportSize is WindowFrame minus OutsideBars and TopMarginHeight.
// ViewportMargins plus VideoSize add up to ViewportSize exactly on both axes.
type Geometry struct {
	WindowFrame     geom.Rect
	ScreenID        string
	Fit             ScreenFit
	Mode            Mode
	TopMarginHeight float64
	OutsideBars     geom.MarginQuad
	InsideBars      geom.MarginQuad
	ViewportMargins geom.MarginQuad
	ViewportSize    geom.Size
	Video           video.Geometry
	VideoSize       geom.Size
}

// Params are the inputs of a Geometry. A nil ViewportMargins asks for the
// best centered margins.
type Params struct {
	WindowFrame     geom.Rect
	ScreenID        string
	Fit             ScreenFit
	Mode            Mode
	TopMarginHeight float64
	OutsideBars     geom.MarginQuad
	InsideBars      geom.MarginQuad
	ViewportMargins *geom.MarginQuad
	Video           video.Geometry
}

// New derives viewport, video size and margins from p.
func New(p Params) Geometry {
	g := Geometry{
		WindowFrame:     p.WindowFrame,
		ScreenID:        p.ScreenID,
		Fit:             p.Fit,
		Mode:            p.Mode,
		TopMarginHeight: math.Max(0, p.TopMarginHeight),
		OutsideBars:     p.OutsideBars.Clamped(),
		InsideBars:      p.InsideBars.Clamped(),
		Video:           p.Video,
	}
	g.ViewportSize = viewportSizeFor(g.WindowFrame.Size(), g.OutsideBars, g.TopMarginHeight)

	aspect := g.Video.AspectRatio()
	if p.ViewportMargins != nil {
		m := p.ViewportMargins.Clamped()
		g.VideoSize = ComputeVideoSize(aspect, g.ViewportSize, m)
		g.ViewportMargins = absorbRemainder(m, g.ViewportSize, g.VideoSize)
	} else {
		g.VideoSize = ComputeVideoSize(aspect, g.ViewportSize, MinViewportMargins(g.Mode))
		g.ViewportMargins = ComputeBestViewportMargins(g.ViewportSize, g.VideoSize, g.InsideBars, g.Mode)
	}
	if err := g.checkInvariants(); err != nil {
		if debugInvariants {
			panic(err)
		}
		logger("new").Warn("geometry invariant violated", slog.String("err", err.Error()), slog.String("geo", g.String()))
	}
	return g
}

// Params returns the inputs that reproduce g. Margins are left nil so that a
// modified copy recomputes them.
func (g Geometry) Params() Params {
	return Params{
		WindowFrame:     g.WindowFrame,
		ScreenID:        g.ScreenID,
		Fit:             g.Fit,
		Mode:            g.Mode,
		TopMarginHeight: g.TopMarginHeight,
		OutsideBars:     g.OutsideBars,
		InsideBars:      g.InsideBars,
		Video:           g.Video,
	}
}

// Clone returns a new Geometry built from g's inputs after edit modified them.
func (g Geometry) Clone(edit func(*Params)) Geometry {
	p := g.Params()
	if edit != nil {
		edit(&p)
	}
	return New(p)
}

func viewportSizeFor(window geom.Size, outside geom.MarginQuad, topMargin float64) geom.Size {
	return geom.Size{
		W: window.W - outside.TotalWidth(),
		H: window.H - outside.TotalHeight() - topMargin,
	}.NonNegative().Rounded()
}

// ComputeVideoSize fits a video of the given aspect ratio into viewport less
// margins without exceeding either axis. The result is integral; it is zero
// when the aspect is not positive or nothing is left of the viewport.
func ComputeVideoSize(aspect float64, viewport geom.Size, margins geom.MarginQuad) geom.Size {
	usable := viewport.Sub(margins.TotalSize()).NonNegative()
	if !(aspect > 0) || math.IsInf(aspect, 0) || usable.W <= 0 || usable.H <= 0 {
		return geom.Size{}
	}
	w := math.Round(usable.H * aspect)
	h := usable.H
	if w > usable.W {
		w = usable.W
		h = math.Min(usable.H, math.Round(usable.W/aspect))
	}
	return geom.Size{W: math.Floor(w), H: math.Floor(h)}
}

// ComputeBestViewportMargins centers video in the viewport, steering it away
// from sidebars that overlay the viewport (insideBars.Leading/Trailing).
// Interactive modes get their minimum gutter added on every side.
func ComputeBestViewportMargins(viewport, video geom.Size, insideBars geom.MarginQuad, mode Mode) geom.MarginQuad {
	minM := MinViewportMargins(mode)
	if viewport.W < minM.TotalWidth() || viewport.H < minM.TotalHeight() {
		return absorbRemainder(geom.ZeroMargins, viewport, video)
	}
	usable := viewport.Sub(minM.TotalSize())
	unusedW := math.Max(0, usable.W-video.W)
	unusedH := math.Max(0, usable.H-video.H)

	leading := bestLeadingMargin(unusedW, video.W, insideBars.Leading, insideBars.Trailing)
	bottom := math.Floor(unusedH / 2)
	return geom.MarginQuad{
		Top:      unusedH - bottom + minM.Top,
		Trailing: unusedW - leading + minM.Trailing,
		Bottom:   bottom + minM.Bottom,
		Leading:  leading + minM.Leading,
	}
}

// bestLeadingMargin splits unused horizontal space and returns the leading
// share, floored. The trailing share is the rest.
func bestLeadingMargin(unused, videoW, leadingBar, trailingBar float64) float64 {
	if unused <= 0 {
		return 0
	}
	half := unused / 2
	leadingClearance := half - leadingBar
	trailingClearance := half - trailingBar

	var leading float64
	switch free := unused - leadingBar - trailingBar; {
	case leadingClearance >= 0 && trailingClearance >= 0:
		leading = half
	case free >= 0:
		// Video fits between the sidebars. Move it off the sidebar it would
		// overlap and no further.
		if leadingClearance < 0 {
			leading = leadingBar
		} else {
			leading = unused - trailingBar
		}
	case leadingBar == 0:
		// Too wide to clear the one sidebar: all unused width goes to the
		// sidebar side so the video sits against the far edge.
		leading = 0
	case trailingBar == 0:
		leading = unused
	default:
		// Not enough room: center in the gap between the sidebars.
		gap := unused + videoW - leadingBar - trailingBar
		overflow := (videoW - gap) / 2
		leadingNeeded := math.Max(0, leadingBar-overflow)
		trailingNeeded := math.Max(0, trailingBar-overflow)
		if sum := leadingNeeded + trailingNeeded; sum > 0 {
			leading = unused * leadingNeeded / sum
		} else {
			leading = half
		}
	}
	return math.Max(0, math.Min(unused, math.Floor(leading)))
}

// absorbRemainder adjusts m so that m + video equals viewport on both axes.
// Extra space is split half to leading/bottom and the rest to trailing/top;
// a deficit is taken proportionally from the sides.
func absorbRemainder(m geom.MarginQuad, viewport, video geom.Size) geom.MarginQuad {
	m.Leading, m.Trailing = balance(m.Leading, m.Trailing, viewport.W-video.W)
	m.Bottom, m.Top = balance(m.Bottom, m.Top, viewport.H-video.H)
	return m
}

func balance(first, second, total float64) (float64, float64) {
	total = math.Max(0, total)
	rem := total - first - second
	switch {
	case rem == 0:
		return first, second
	case rem > 0:
		add := math.Floor(rem / 2)
		return first + add, second + rem - add
	}
	sum := first + second
	if sum <= 0 {
		f := math.Floor(total / 2)
		return f, total - f
	}
	f := math.Floor(total * first / sum)
	return f, total - f
}

func (g Geometry) checkInvariants() error {
	if g.ViewportSize.W < 0 || g.ViewportSize.H < 0 {
		return fmt.Errorf("negative viewport %v", g.ViewportSize)
	}
	if g.ViewportSize != g.ViewportSize.Rounded() || g.VideoSize != g.VideoSize.Rounded() {
		return fmt.Errorf("non-integral viewport %v or video %v", g.ViewportSize, g.VideoSize)
	}
	if !g.ViewportMargins.IsValid() {
		return fmt.Errorf("negative viewport margins %+v", g.ViewportMargins)
	}
	if g.ViewportMargins.TotalWidth()+g.VideoSize.W != g.ViewportSize.W ||
		g.ViewportMargins.TotalHeight()+g.VideoSize.H != g.ViewportSize.H {
		return fmt.Errorf("margins %+v + video %v != viewport %v", g.ViewportMargins, g.VideoSize, g.ViewportSize)
	}
	return nil
}

// OutsideBarsTotalSize includes the camera housing margin.
func (g Geometry) OutsideBarsTotalSize() geom.Size {
	return g.OutsideBars.TotalSize().Add(geom.Size{H: g.TopMarginHeight})
}

// ViewportFrameInWindow is the viewport rect in window coordinates.
func (g Geometry) ViewportFrameInWindow() geom.Rect {
	return geom.R(g.OutsideBars.Leading, g.OutsideBars.Bottom, g.ViewportSize.W, g.ViewportSize.H)
}

// VideoFrameInWindow is the video rect in window coordinates.
func (g Geometry) VideoFrameInWindow() geom.Rect {
	vp := g.ViewportFrameInWindow()
	return geom.R(vp.X+g.ViewportMargins.Leading, vp.Y+g.ViewportMargins.Bottom, g.VideoSize.W, g.VideoSize.H)
}

// VideoFrameInScreen is the video rect in screen coordinates.
func (g Geometry) VideoFrameInScreen() geom.Rect {
	return g.VideoFrameInWindow().Offset(g.WindowFrame.X, g.WindowFrame.Y)
}

// ContainerFrame is the rectangle bounding g on its screen, if its fit has one.
func (g Geometry) ContainerFrame(env Env) (geom.Rect, bool) {
	return g.Fit.ContainerFrame(env.Screen(g.ScreenID), env.Policy)
}

func (g Geometry) MinViewportSize() geom.Size          { return MinViewportSize(g.Mode) }
func (g Geometry) MinViewportMargins() geom.MarginQuad { return MinViewportMargins(g.Mode) }

// IsValid reports whether the video has a usable aspect ratio.
func (g Geometry) IsValid() bool { return g.Video.IsValid() }

func (g Geometry) String() string {
	f := g.WindowFrame
	return fmt.Sprintf("{%s %s screen=%q win=(%g,%g %gx%g) top=%g out=%v in=%v vp=%gx%g margins=%v video=%gx%g}",
		g.Mode, g.Fit, g.ScreenID, f.X, f.Y, f.W, f.H, g.TopMarginHeight,
		quad(g.OutsideBars), quad(g.InsideBars), g.ViewportSize.W, g.ViewportSize.H,
		quad(g.ViewportMargins), g.VideoSize.W, g.VideoSize.H)
}

func quad(m geom.MarginQuad) string {
	return fmt.Sprintf("[t%g r%g b%g l%g]", m.Top, m.Trailing, m.Bottom, m.Leading)
}
