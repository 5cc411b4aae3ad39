/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"math"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/video"
)

// MusicModeGeometry is the compact music-mode window: an optional video on
// top, the control bar, and an optional playlist below it. The window width
// drives the video height.
type MusicModeGeometry struct {
	WindowFrame       geom.Rect
	ScreenID          string
	PlaylistHeight    float64
	IsVideoVisible    bool
	IsPlaylistVisible bool
	Video             video.Geometry
}

// DefaultMusicModeGeometry places a default-width music window with video and
// without playlist in the bottom-right corner of the visible frame.
func DefaultMusicModeGeometry(env Env, screenID string, v video.Geometry) MusicModeGeometry {
	vis := env.Screen(screenID).VisibleFrame
	m := MusicModeGeometry{
		WindowFrame:    geom.R(vis.MaxX()-MusicModeDefaultWindowWidth, vis.Y, MusicModeDefaultWindowWidth, 0),
		ScreenID:       screenID,
		PlaylistHeight: MusicModeMinPlaylistHeight,
		IsVideoVisible: true,
		Video:          v,
	}
	m.WindowFrame.H = m.contentHeight(m.WindowFrame.W)
	return m.Refit(env)
}

func (m MusicModeGeometry) videoHeightFor(width float64) float64 {
	if !m.IsVideoVisible || !m.Video.IsValid() {
		return 0
	}
	return math.Round(width / m.Video.AspectRatio())
}

func (m MusicModeGeometry) playlistHeight() float64 {
	if !m.IsPlaylistVisible {
		return 0
	}
	return math.Max(MusicModeMinPlaylistHeight, m.PlaylistHeight)
}

func (m MusicModeGeometry) contentHeight(width float64) float64 {
	return m.videoHeightFor(width) + MusicModeControlBarHeight + m.playlistHeight()
}

func (m MusicModeGeometry) VideoHeight() float64 { return m.videoHeightFor(m.WindowFrame.W) }

// BottomBarHeight is the control bar plus the visible playlist.
func (m MusicModeGeometry) BottomBarHeight() float64 {
	return MusicModeControlBarHeight + m.playlistHeight()
}

// Refit clamps the width to the allowed range and the height to the visible
// frame. When the window is too tall the playlist shrinks first, then it is
// hidden, then the video is hidden. The top edge stays where it was.
func (m MusicModeGeometry) Refit(env Env) MusicModeGeometry {
	vis := env.Screen(m.ScreenID).VisibleFrame
	top := m.WindowFrame.MaxY()
	w := math.Round(math.Max(MusicModeMinWindowWidth, math.Min(m.WindowFrame.W, vis.W)))

	if m.IsPlaylistVisible {
		m.PlaylistHeight = math.Max(MusicModeMinPlaylistHeight, m.PlaylistHeight)
		if over := m.contentHeight(w) - vis.H; over > 0 {
			m.PlaylistHeight = math.Max(MusicModeMinPlaylistHeight, m.PlaylistHeight-over)
		}
		if m.contentHeight(w) > vis.H {
			m.IsPlaylistVisible = false
		}
	}
	if m.IsVideoVisible && m.contentHeight(w) > vis.H {
		m.IsVideoVisible = false
	}

	h := m.contentHeight(w)
	m.WindowFrame = geom.R(m.WindowFrame.X, top-h, w, h).ConstrainedIn(vis)
	return m
}

// WithVideoVisible toggles the video, keeping the top edge.
func (m MusicModeGeometry) WithVideoVisible(env Env, visible bool) MusicModeGeometry {
	m.IsVideoVisible = visible
	return m.withContentHeight(env)
}

// WithPlaylistVisible toggles the playlist, keeping the top edge.
func (m MusicModeGeometry) WithPlaylistVisible(env Env, visible bool) MusicModeGeometry {
	m.IsPlaylistVisible = visible
	return m.withContentHeight(env)
}

func (m MusicModeGeometry) withContentHeight(env Env) MusicModeGeometry {
	top := m.WindowFrame.MaxY()
	m.WindowFrame.H = m.contentHeight(m.WindowFrame.W)
	m.WindowFrame.Y = top - m.WindowFrame.H
	return m.Refit(env)
}

// ToPWinGeometry converts m into a MusicMode Geometry whose outside bottom
// bar holds the control bar and playlist.
func (m MusicModeGeometry) ToPWinGeometry() Geometry {
	return New(Params{
		WindowFrame: m.WindowFrame,
		ScreenID:    m.ScreenID,
		Fit:         KeepInVisibleScreen,
		Mode:        MusicMode,
		OutsideBars: geom.MarginQuad{Bottom: m.BottomBarHeight()},
		Video:       m.Video,
	})
}

// MusicModeGeometryFrom reads a MusicMode Geometry back. The playlist is
// visible when the bottom bar is taller than the control bar.
func MusicModeGeometryFrom(g Geometry) MusicModeGeometry {
	playlist := g.OutsideBars.Bottom - MusicModeControlBarHeight
	return MusicModeGeometry{
		WindowFrame:       g.WindowFrame,
		ScreenID:          g.ScreenID,
		PlaylistHeight:    math.Max(MusicModeMinPlaylistHeight, playlist),
		IsVideoVisible:    g.ViewportSize.H > 0,
		IsPlaylistVisible: playlist > 0,
		Video:             g.Video,
	}
}
