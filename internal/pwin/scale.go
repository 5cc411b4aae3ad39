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
	"math"

	"pwinlayout/internal/geom"
)

type scaleOptions struct {
	screenID      *string
	fit           *ScreenFit
	mode          *Mode
	lock          *bool
	liveResize    bool
	resizingWidth bool
}

// ScaleOption overrides one input of a scaling transformation.
type ScaleOption func(*scaleOptions)

// OnScreen moves the result to another screen.
func OnScreen(id string) ScaleOption { return func(o *scaleOptions) { o.screenID = &id } }

// WithFit changes the screen fit of the result.
func WithFit(f ScreenFit) ScaleOption { return func(o *scaleOptions) { o.fit = &f } }

// InMode changes the mode of the result.
func InMode(m Mode) ScaleOption { return func(o *scaleOptions) { o.mode = &m } }

// LockViewport overrides the lock-viewport-to-video policy.
func LockViewport(lock bool) ScaleOption { return func(o *scaleOptions) { o.lock = &lock } }

// LiveResize marks a ResizeWindow call as part of a user drag. resizingWidth
// tells which axis the user is dragging.
func LiveResize(resizingWidth bool) ScaleOption {
	return func(o *scaleOptions) {
		o.liveResize = true
		o.resizingWidth = resizingWidth
	}
}

func (g Geometry) resolve(env Env, opts []ScaleOption) (screenID string, fit ScreenFit, mode Mode, lock bool, o scaleOptions) {
	for _, opt := range opts {
		opt(&o)
	}
	screenID, fit, mode = g.ScreenID, g.Fit, g.Mode
	if o.screenID != nil {
		screenID = *o.screenID
	}
	if o.fit != nil {
		fit = *o.fit
	}
	if o.mode != nil {
		mode = *o.mode
	}
	lock = env.Policy.LockViewportToVideoSize || mode.AlwaysLocksViewport()
	if o.lock != nil {
		lock = *o.lock
	}
	if fit.IsFullScreen() {
		lock = false
	}
	return screenID, fit, mode, lock, o
}

// lockedVideo is the largest video fitting in viewport less the mode's
// minimum margins. A video below the mode's minimum on either axis is grown,
// keeping its aspect, until both minima hold.
func lockedVideo(aspect float64, viewport geom.Size, mode Mode) geom.Size {
	minM := MinViewportMargins(mode)
	minV := MinViewportSize(mode).Sub(minM.TotalSize()).NonNegative()
	v := stableVideoSize(aspect, viewport.Sub(minM.TotalSize()).NonNegative())
	for i := 0; i < 4 && (v.W < minV.W || v.H < minV.H); i++ {
		if v.W <= 0 || v.H <= 0 {
			v = geom.Size{W: math.Max(minV.W, 1), H: math.Max(minV.W, 1) / aspect}
		}
		f := math.Max(minV.W/v.W, minV.H/v.H)
		grow := float64(i)
		v = stableVideoSize(aspect, geom.Size{W: ceilTol(v.W*f) + grow, H: ceilTol(v.H*f) + grow})
	}
	return v
}

// lockedViewport wraps lockedVideo in the mode's minimum margins.
func lockedViewport(aspect float64, viewport geom.Size, mode Mode) geom.Size {
	return lockedVideo(aspect, viewport, mode).Add(MinViewportMargins(mode).TotalSize())
}

// stableVideoSize fits aspect into box and repeats the fit on its own result
// until it no longer changes, so that New derives the same video size from
// the wrapped viewport.
func stableVideoSize(aspect float64, box geom.Size) geom.Size {
	v := ComputeVideoSize(aspect, box, geom.ZeroMargins)
	for i := 0; i < 4; i++ {
		next := ComputeVideoSize(aspect, v, geom.ZeroMargins)
		if next == v {
			break
		}
		v = next
	}
	return v
}

// ceilTol rounds up, ignoring float noise just above an integer.
func ceilTol(v float64) float64 { return math.Ceil(v - 1e-9) }

// ScaleViewport resizes the window so that its viewport becomes size, then
// keeps the window's center and constrains it to its container.
func (g Geometry) ScaleViewport(env Env, size geom.Size, opts ...ScaleOption) Geometry {
	aspect := g.Video.AspectRatio()
	if !g.IsValid() {
		logger("scale_viewport").Warn("invalid video aspect, keeping geometry", slog.Float64("aspect", aspect))
		return g
	}
	screenID, fit, mode, lock, _ := g.resolve(env, opts)
	minVP := MinViewportSize(mode)

	vp := size
	if lock {
		vp = lockedViewport(aspect, vp.AtLeast(minVP), mode)
	}

	container, hasContainer := fit.ContainerFrame(env.Screen(screenID), env.Policy)
	var maxVP geom.Size
	if hasContainer {
		maxVP = container.Size().Sub(g.OutsideBarsTotalSize()).NonNegative()
		vp = vp.ClampedTo(minVP, maxVP)
		if lock {
			vp = lockedViewport(aspect, vp, mode)
		}
	}
	// the minimum wins over the container
	vp = vp.AtLeast(minVP)

	if lock {
		// Snap the video rather than the viewport so that the viewport keeps
		// wrapping it exactly.
		minM := MinViewportMargins(mode)
		minV := minVP.Sub(minM.TotalSize()).NonNegative()
		v := vp.Sub(minM.TotalSize())
		snapped := geom.SnapSize(v, g.VideoSize)
		ok := snapped != v && stableVideoSize(aspect, snapped) == snapped && snapped.W >= minV.W && snapped.H >= minV.H
		if ok && hasContainer {
			ok = snapped.Add(minM.TotalSize()).Fits(maxVP)
		}
		if ok {
			vp = snapped.Add(minM.TotalSize())
		}
	} else {
		vp = geom.SnapSize(vp, g.ViewportSize)
	}

	winSize := vp.Add(g.OutsideBarsTotalSize())
	frame := g.WindowFrame.CenteredResize(winSize)
	if hasContainer {
		if fit.IsFullScreen() {
			frame = frame.CenteredIn(container)
		} else if fit.ShouldMoveWindowToKeepInContainer(env.Policy) {
			frame = frame.ConstrainedIn(container)
		}
	}

	return g.Clone(func(p *Params) {
		p.WindowFrame = frame
		p.ScreenID = screenID
		p.Fit = fit
		p.Mode = mode
	})
}

// ScaleVideo resizes the window so that the video becomes size. The height
// is derived from the width to enforce the aspect ratio.
func (g Geometry) ScaleVideo(env Env, size geom.Size, opts ...ScaleOption) Geometry {
	aspect := g.Video.AspectRatio()
	if !g.IsValid() {
		logger("scale_video").Warn("invalid video aspect, keeping geometry", slog.Float64("aspect", aspect))
		return g
	}
	screenID, fit, mode, lock, _ := g.resolve(env, opts)
	minM := MinViewportMargins(mode)

	v := geom.Size{W: size.W, H: math.Round(size.W / aspect)}
	if v.W < MinVideoSize.W {
		v = geom.Size{W: MinVideoSize.W, H: math.Round(MinVideoSize.W / aspect)}
	}
	if v.H < MinVideoSize.H {
		v = geom.Size{W: math.Round(MinVideoSize.H * aspect), H: MinVideoSize.H}
	}
	if container, ok := fit.ContainerFrame(env.Screen(screenID), env.Policy); ok {
		maxVP := container.Size().Sub(g.OutsideBarsTotalSize()).NonNegative()
		if maxVideo := maxVP.Sub(minM.TotalSize()); !v.Fits(maxVideo) {
			v = ComputeVideoSize(aspect, maxVP, minM)
		}
	}

	var vp geom.Size
	if lock || g.VideoSize.W <= 0 || g.VideoSize.H <= 0 {
		vp = v.Add(minM.TotalSize())
	} else {
		vp = geom.Size{
			W: g.ViewportSize.W * v.W / g.VideoSize.W,
			H: g.ViewportSize.H * v.H / g.VideoSize.H,
		}
		vp = geom.SnapSize(vp, g.ViewportSize)
	}
	return g.ScaleViewport(env, vp, OnScreen(screenID), WithFit(fit), InMode(mode), LockViewport(lock))
}

// ResizeWindow applies a requested window size. During a live drag with the
// viewport locked, the axis the user is not dragging follows the aspect ratio.
func (g Geometry) ResizeWindow(env Env, windowSize geom.Size, opts ...ScaleOption) Geometry {
	aspect := g.Video.AspectRatio()
	if !g.IsValid() {
		logger("resize_window").Warn("invalid video aspect, keeping geometry", slog.Float64("aspect", aspect))
		return g
	}
	_, _, mode, lock, o := g.resolve(env, opts)
	vp := windowSize.Sub(g.OutsideBarsTotalSize())
	if lock && o.liveResize {
		minM := MinViewportMargins(mode)
		if o.resizingWidth {
			vp.H = math.Round((vp.W-minM.TotalWidth())/aspect) + minM.TotalHeight()
		} else {
			vp.W = math.Round((vp.H-minM.TotalHeight())*aspect) + minM.TotalWidth()
		}
	}
	return g.ScaleViewport(env, vp, opts...)
}

// Refit re-applies the current viewport under fit, e.g. after the screen
// changed size.
func (g Geometry) Refit(env Env, fit ScreenFit) Geometry {
	return g.ScaleViewport(env, g.ViewportSize, WithFit(fit))
}
