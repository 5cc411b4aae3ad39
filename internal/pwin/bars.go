/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"log/slog"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/video"
)

// OutsideBarChange lists new outside bar sizes; nil leaves a side unchanged.
type OutsideBarChange struct {
	Top, Trailing, Bottom, Leading *float64
}

func (c OutsideBarChange) apply(m geom.MarginQuad) geom.MarginQuad {
	if c.Top != nil {
		m.Top = *c.Top
	}
	if c.Trailing != nil {
		m.Trailing = *c.Trailing
	}
	if c.Bottom != nil {
		m.Bottom = *c.Bottom
	}
	if c.Leading != nil {
		m.Leading = *c.Leading
	}
	return m.Clamped()
}

// BarChange combines inside and outside bar changes with an optional new
// video. KeepFullScreenDimensions keeps a window that spans its container on
// an axis spanning it after the change.
type BarChange struct {
	Outside                  OutsideBarChange
	Inside                   OutsideBarChange
	Video                    *video.Geometry
	Fit                      *ScreenFit
	Mode                     *Mode
	KeepFullScreenDimensions bool
}

// Ptr is shorthand for building bar changes.
func Ptr(v float64) *float64 { return &v }

// WithResizedOutsideBars grows or shrinks the window to absorb new outside
// bar sizes while the viewport stays where it is on screen. A taller top bar
// extends the window upward; a taller bottom bar extends it downward; a wider
// leading bar extends it to the left. When the container cannot hold the new
// size the window is clamped and its origin stays put on that axis.
func (g Geometry) WithResizedOutsideBars(env Env, c OutsideBarChange) Geometry {
	bars := c.apply(g.OutsideBars)
	dTop := bars.Top - g.OutsideBars.Top
	dTrailing := bars.Trailing - g.OutsideBars.Trailing
	dBottom := bars.Bottom - g.OutsideBars.Bottom
	dLeading := bars.Leading - g.OutsideBars.Leading

	f := g.WindowFrame
	frame := geom.R(f.X-dLeading, f.Y-dBottom, f.W+dLeading+dTrailing, f.H+dTop+dBottom)
	if container, ok := g.ContainerFrame(env); ok {
		if frame.W > container.W {
			frame.W = container.W
			frame.X = f.X
		}
		if frame.H > container.H {
			frame.H = container.H
			frame.Y = f.Y
		}
	}
	return g.Clone(func(p *Params) {
		p.WindowFrame = frame
		p.OutsideBars = bars
	})
}

// WithResizedBars applies inside and outside bar changes. It does not rescale
// the viewport; callers refit afterwards if the viewport should wrap the video.
func (g Geometry) WithResizedBars(env Env, c BarChange) Geometry {
	withInside := g.Clone(func(p *Params) {
		p.InsideBars = c.Inside.apply(g.InsideBars)
		if c.Video != nil {
			p.Video = *c.Video
		}
		if c.Fit != nil {
			p.Fit = *c.Fit
		}
		if c.Mode != nil {
			p.Mode = *c.Mode
		}
	})
	out := withInside.WithResizedOutsideBars(env, c.Outside)
	if !c.KeepFullScreenDimensions {
		return out
	}

	container := out.stickyContainer(env)
	frame := out.WindowFrame
	if g.WindowFrame.W == container.W {
		frame.X, frame.W = container.X, container.W
	}
	if g.WindowFrame.H == container.H {
		frame.Y, frame.H = container.Y, container.H
	}
	if frame == out.WindowFrame {
		return out
	}
	return out.Clone(func(p *Params) { p.WindowFrame = frame })
}

// stickyContainer is the rect a window "fills" for KeepFullScreenDimensions:
// the fit's container in full screen, the visible frame otherwise.
func (g Geometry) stickyContainer(env Env) geom.Rect {
	s := env.Screen(g.ScreenID)
	if g.Fit.IsFullScreen() {
		if c, ok := g.ContainerFrame(env); ok {
			return c
		}
	}
	return s.VisibleFrame
}

// CropVideo shows only newVideo's crop box inside the same window. The part
// of the current video outside the box turns into viewport margins, so the
// window frame does not change.
func (g Geometry) CropVideo(newVideo video.Geometry) Geometry {
	lg := logger("crop_video")
	if !newVideo.IsValid() || g.VideoSize.W <= 0 || g.VideoSize.H <= 0 {
		lg.Warn("cannot crop, keeping geometry", slog.String("video", newVideo.String()), slog.String("geo", g.String()))
		return g
	}
	cur := g.Video.DisplayCropRect()
	next := newVideo.DisplayCropRect()
	if g.Video.Rotation != newVideo.Rotation || g.Video.RawSize() != newVideo.RawSize() {
		lg.Warn("crop changes frame shape, keeping geometry", slog.String("video", newVideo.String()))
		return g
	}
	sx := g.VideoSize.W / cur.W
	sy := g.VideoSize.H / cur.H

	m := g.ViewportMargins
	m.Leading += (next.X - cur.X) * sx
	m.Trailing += (cur.MaxX() - next.MaxX()) * sx
	m.Bottom += (next.Y - cur.Y) * sy
	m.Top += (cur.MaxY() - next.MaxY()) * sy
	m = m.Rounded().Clamped()

	lg.Debug("cropped", slog.String("from", g.Video.String()), slog.String("to", newVideo.String()))
	return g.Clone(func(p *Params) {
		p.ViewportMargins = &m
		p.Video = newVideo
	})
}
