/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"log/slog"
	"math"

	"pwinlayout/internal/geom"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/video"
)

func (st State) params(frame geom.Rect, screenID string, fit pwin.ScreenFit, mode pwin.Mode, v video.Geometry) pwin.Params {
	return pwin.Params{
		WindowFrame: frame,
		ScreenID:    screenID,
		Fit:         fit,
		Mode:        mode,
		OutsideBars: st.OutsideBars(),
		InsideBars:  st.InsideBars(),
		Video:       v,
	}
}

func (st State) fullScreenMode() pwin.Mode {
	if st.Spec.Mode.IsFullScreen() {
		return st.Spec.Mode
	}
	return pwin.FullScreenNormal
}

// BuildFullScreenGeometry fills screenID. Legacy full screen covers the whole
// frame and keeps the camera housing strip as a top margin unless the video
// may overlap it; native full screen uses the frame below the housing.
func (st State) BuildFullScreenGeometry(env pwin.Env, screenID string, v video.Geometry) pwin.Geometry {
	scr := env.Screen(screenID)
	mode := st.fullScreenMode()
	if st.Spec.IsLegacyStyle {
		p := st.params(scr.Frame, screenID, pwin.LegacyFullScreen, mode, v)
		if scr.HasCameraHousing() && !env.Policy.AllowVideoToOverlapCameraHousing {
			p.TopMarginHeight = scr.CameraHousingHeight
		}
		return pwin.New(p)
	}
	return pwin.New(st.params(scr.FrameWithoutCameraHousing(), screenID, pwin.NativeFullScreen, mode, v))
}

// BuildGeometry computes the geometry of this layout for a window currently
// at windowFrame.
func (st State) BuildGeometry(env pwin.Env, windowFrame geom.Rect, screenID string, v video.Geometry) pwin.Geometry {
	switch {
	case st.Spec.IsFullScreen():
		return st.BuildFullScreenGeometry(env, screenID, v)
	case st.Spec.IsMusicMode():
		m := pwin.MusicModeGeometry{
			WindowFrame:    windowFrame,
			ScreenID:       screenID,
			PlaylistHeight: pwin.MusicModeMinPlaylistHeight,
			IsVideoVisible: true,
			Video:          v,
		}
		// Leftover height below the control bar becomes the playlist.
		if rest := windowFrame.H - m.VideoHeight() - pwin.MusicModeControlBarHeight; rest >= pwin.MusicModeMinPlaylistHeight {
			m.IsPlaylistVisible = true
			m.PlaylistHeight = rest
		}
		return m.Refit(env).ToPWinGeometry()
	}
	g := pwin.New(st.params(windowFrame, screenID, pwin.KeepInVisibleScreen, st.Spec.Mode, v))
	return g.ScaleViewport(env, g.ViewportSize)
}

// BuildDefaultInitialGeometry opens the video at its natural size centered in
// the visible frame, shrunk to fit when needed.
func (st State) BuildDefaultInitialGeometry(env pwin.Env, screenID string, v video.Geometry) pwin.Geometry {
	if st.Spec.IsFullScreen() {
		return st.BuildFullScreenGeometry(env, screenID, v)
	}
	if st.Spec.IsMusicMode() {
		return pwin.DefaultMusicModeGeometry(env, screenID, v).ToPWinGeometry()
	}
	vis := env.Screen(screenID).VisibleFrame
	size := v.SizeCAR().Add(st.OutsideBars().TotalSize()).Add(pwin.MinViewportMargins(st.Spec.Mode).TotalSize())
	frame := geom.R(0, 0, size.W, size.H).CenteredIn(vis)
	g := pwin.New(st.params(frame, screenID, pwin.KeepInVisibleScreen, st.Spec.Mode, v))
	return g.ScaleViewport(env, g.ViewportSize)
}

// ConvertWindowedModeGeometry moves a windowed geometry onto this layout's
// bars and mode. A nil v keeps the current video. applyOffsetIndex > 0
// staggers the window for the n-th window opened at the same place.
func (st State) ConvertWindowedModeGeometry(env pwin.Env, from pwin.Geometry, v *video.Geometry, keepFullScreenDimensions bool, applyOffsetIndex int) pwin.Geometry {
	if from.TopMarginHeight != 0 {
		from = from.Clone(func(p *pwin.Params) { p.TopMarginHeight = 0 })
	}
	out, in := st.OutsideBars(), st.InsideBars()
	fit := pwin.KeepInVisibleScreen
	mode := st.Spec.Mode
	if !mode.IsWindowed() {
		applog.WithOperation(applog.WithComponent("layout"), "convert_windowed").
			Warn("converting into a non-windowed layout", slog.String("mode", mode.String()))
	}
	g := from.WithResizedBars(env, pwin.BarChange{
		Outside:                  pwin.OutsideBarChange{Top: &out.Top, Trailing: &out.Trailing, Bottom: &out.Bottom, Leading: &out.Leading},
		Inside:                   pwin.OutsideBarChange{Top: &in.Top, Trailing: &in.Trailing, Bottom: &in.Bottom, Leading: &in.Leading},
		Video:                    v,
		Fit:                      &fit,
		Mode:                     &mode,
		KeepFullScreenDimensions: keepFullScreenDimensions,
	})
	if applyOffsetIndex > 0 {
		g = g.Clone(func(p *pwin.Params) {
			p.WindowFrame = OffsetWindowFrame(env.Screen(g.ScreenID).VisibleFrame, g.WindowFrame, applyOffsetIndex)
		})
	}
	var opts []pwin.ScaleOption
	if keepFullScreenDimensions {
		opts = append(opts, pwin.LockViewport(false))
	}
	return g.ScaleViewport(env, g.ViewportSize, opts...)
}

// OffsetWindowFrame shifts frame index steps down and to the right. When that
// would leave the visible frame the sequence restarts at its top-left corner,
// wrapping after as many steps as fit.
func OffsetWindowFrame(visible, frame geom.Rect, index int) geom.Rect {
	if index <= 0 {
		return frame
	}
	step := pwin.WindowOpenOffset
	d := step * float64(index)
	out := frame.Offset(d, -d)
	if out.MaxX() <= visible.MaxX() && out.Y >= visible.Y {
		return out
	}
	maxSteps := int(math.Max(0, math.Floor(math.Min((visible.W-frame.W)/step, (visible.H-frame.H)/step))))
	k := float64(index % (maxSteps + 1))
	return geom.R(visible.X+step*k, visible.MaxY()-frame.H-step*k, frame.W, frame.H)
}
