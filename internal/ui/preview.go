/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the optional desktop preview of a player window geometry.
// The Fyne front end is only compiled with -tags fyne and cgo.
package ui

import (
	"math"

	"pwinlayout/internal/export"
	"pwinlayout/internal/layout"
	"pwinlayout/internal/pwin"
)

// Placement is a box mapped into widget coordinates with a top-left origin.
type Placement struct {
	Box        export.Box
	X, Y, W, H float32
}

// Place scales boxes uniformly to fit a w x h area with pad on every side and
// centers the result.
func Place(boxes []export.Box, w, h, pad float32) []Placement {
	bounds := export.Bounds(boxes)
	if bounds.IsEmpty() || w <= 2*pad || h <= 2*pad {
		return nil
	}
	s := math.Min(float64(w-2*pad)/bounds.W, float64(h-2*pad)/bounds.H)
	offX := (float64(w) - bounds.W*s) / 2
	offY := (float64(h) - bounds.H*s) / 2

	out := make([]Placement, 0, len(boxes))
	for _, b := range boxes {
		r := b.Rect
		out = append(out, Placement{
			Box: b,
			X:   float32(offX + (r.X-bounds.X)*s),
			Y:   float32(offY + (bounds.MaxY()-r.MaxY())*s),
			W:   float32(r.W * s),
			H:   float32(r.H * s),
		})
	}
	return out
}

// ModeChoices are the window modes offered by the preview.
var ModeChoices = []string{
	pwin.WindowedNormal.String(),
	pwin.FullScreenNormal.String(),
	pwin.MusicMode.String(),
	pwin.WindowedInteractive.String(),
}

// OSCChoices are the OSC positions offered by the preview.
var OSCChoices = []string{
	layout.OSCFloating.String(),
	layout.OSCTop.String(),
	layout.OSCBottom.String(),
}

// modeFromChoice maps a mode name to the mode and interactive sub-mode to enter.
func modeFromChoice(s string) (pwin.Mode, layout.InteractiveMode, error) {
	m, err := pwin.ParseMode(s)
	if err != nil {
		return 0, layout.NoInteractiveMode, err
	}
	if m.IsInteractive() {
		return m, layout.CropMode, nil
	}
	return m, layout.NoInteractiveMode, nil
}

// togglePlaylist reports where the playlist lives and whether the next
// toggle should show it.
func togglePlaylist(spec layout.Spec) (layout.SidebarLocation, bool) {
	loc, ok := spec.SidebarFor(layout.TabPlaylist)
	if !ok {
		loc = layout.TrailingSidebar
	}
	return loc, spec.Sidebar(loc).VisibleTab != layout.TabPlaylist
}
