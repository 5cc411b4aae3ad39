/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"testing"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/screen"
)

func TestDefaultMusicModeGeometry(t *testing.T) {
	env := NewEnv(screen.Default())
	m := DefaultMusicModeGeometry(env, "main", hd)
	if m.WindowFrame != geom.R(1640, 0, 280, 230) {
		t.Fatalf("WindowFrame = %+v", m.WindowFrame)
	}
	if m.VideoHeight() != 158 {
		t.Fatalf("VideoHeight = %v, want 158", m.VideoHeight())
	}
	g := m.ToPWinGeometry()
	if g.Mode != MusicMode || g.ViewportSize != geom.S(280, 158) || g.VideoSize != geom.S(280, 158) {
		t.Fatalf("ToPWinGeometry = %v", g)
	}
	back := MusicModeGeometryFrom(g)
	if back.IsPlaylistVisible || !back.IsVideoVisible || back.WindowFrame != m.WindowFrame {
		t.Fatalf("MusicModeGeometryFrom = %+v", back)
	}
}

func TestMusicModeTogglesKeepTopEdge(t *testing.T) {
	env := NewEnv(screen.Default())
	m := DefaultMusicModeGeometry(env, "main", hd)
	m.WindowFrame.Y = 500
	top := m.WindowFrame.MaxY()

	withList := m.WithPlaylistVisible(env, true)
	if withList.WindowFrame.H != 368 || withList.WindowFrame.MaxY() != top {
		t.Fatalf("playlist shown: %+v", withList.WindowFrame)
	}
	g := withList.ToPWinGeometry()
	if g.OutsideBars.Bottom != MusicModeControlBarHeight+MusicModeMinPlaylistHeight {
		t.Fatalf("bottom bar = %v", g.OutsideBars.Bottom)
	}
	if back := MusicModeGeometryFrom(g); !back.IsPlaylistVisible {
		t.Fatalf("playlist visibility lost on round trip")
	}

	noVideo := withList.WithVideoVisible(env, false)
	if noVideo.WindowFrame.H != 210 || noVideo.WindowFrame.MaxY() != top {
		t.Fatalf("video hidden: %+v", noVideo.WindowFrame)
	}
}

func TestMusicModeRefitOnShortScreen(t *testing.T) {
	short := screen.Screen{ID: "short", Frame: geom.R(0, 0, 1024, 275), VisibleFrame: geom.R(0, 0, 1024, 250)}
	env := NewEnv(short)
	m := MusicModeGeometry{
		WindowFrame:       geom.R(0, 0, 200, 100),
		ScreenID:          "short",
		PlaylistHeight:    300,
		IsVideoVisible:    true,
		IsPlaylistVisible: true,
		Video:             hd,
	}
	got := m.Refit(env)
	if got.WindowFrame.W != MusicModeMinWindowWidth {
		t.Fatalf("width = %v, want min", got.WindowFrame.W)
	}
	if got.IsPlaylistVisible {
		t.Fatalf("playlist should be hidden on a short screen")
	}
	if !got.IsVideoVisible || got.WindowFrame.H > 250 {
		t.Fatalf("refit = %+v", got)
	}
}
