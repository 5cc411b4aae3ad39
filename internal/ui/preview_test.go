/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"pwinlayout/internal/export"
	"pwinlayout/internal/geom"
	"pwinlayout/internal/layout"
	"pwinlayout/internal/pwin"
)

func TestPlaceFitsAndFlips(t *testing.T) {
	boxes := []export.Box{
		{Kind: export.KindScreen, Rect: geom.R(0, 0, 200, 100)},
		{Kind: export.KindWindow, Rect: geom.R(50, 25, 100, 50)},
	}
	got := Place(boxes, 420, 220, 10)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if s := got[0]; s.X != 10 || s.Y != 10 || s.W != 400 || s.H != 200 {
		t.Fatalf("screen placement = %+v, want (10,10 400x200)", s)
	}
	if w := got[1]; w.X != 110 || w.Y != 60 || w.W != 200 || w.H != 100 {
		t.Fatalf("window placement = %+v, want (110,60 200x100)", w)
	}
}

func TestPlaceCentersOnShortAxis(t *testing.T) {
	boxes := []export.Box{{Kind: export.KindWindow, Rect: geom.R(0, 0, 100, 100)}}
	got := Place(boxes, 300, 100, 0)
	if p := got[0]; p.X != 100 || p.Y != 0 || p.W != 100 || p.H != 100 {
		t.Fatalf("placement = %+v, want (100,0 100x100)", p)
	}
}

func TestPlaceDegenerate(t *testing.T) {
	if got := Place(nil, 400, 300, 10); got != nil {
		t.Fatalf("Place(nil) = %v, want nil", got)
	}
	boxes := []export.Box{{Kind: export.KindWindow, Rect: geom.R(0, 0, 100, 100)}}
	if got := Place(boxes, 20, 20, 10); got != nil {
		t.Fatalf("Place in a too small area = %v, want nil", got)
	}
}

func TestModeFromChoice(t *testing.T) {
	tests := []struct {
		in   string
		mode pwin.Mode
		im   layout.InteractiveMode
	}{
		{"windowed", pwin.WindowedNormal, layout.NoInteractiveMode},
		{"fullScreen", pwin.FullScreenNormal, layout.NoInteractiveMode},
		{"musicMode", pwin.MusicMode, layout.NoInteractiveMode},
		{"windowedInteractive", pwin.WindowedInteractive, layout.CropMode},
	}
	for _, tt := range tests {
		m, im, err := modeFromChoice(tt.in)
		if err != nil || m != tt.mode || im != tt.im {
			t.Fatalf("modeFromChoice(%q) = %v, %v, %v; want %v, %v", tt.in, m, im, err, tt.mode, tt.im)
		}
	}
	if _, _, err := modeFromChoice("cinema"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	for _, s := range ModeChoices {
		if _, _, err := modeFromChoice(s); err != nil {
			t.Fatalf("choice %q does not parse: %v", s, err)
		}
	}
}

func TestTogglePlaylist(t *testing.T) {
	spec := layout.FromPreferences(layout.DefaultPreferences(), layout.SpecOptions{})
	loc, show := togglePlaylist(spec)
	if loc != layout.TrailingSidebar || !show {
		t.Fatalf("togglePlaylist(closed) = %v, %v; want trailing, true", loc, show)
	}
	spec = spec.WithSidebarTab(layout.TabPlaylist, true)
	if _, show := togglePlaylist(spec); show {
		t.Fatalf("togglePlaylist(open) wants to show again")
	}
}
