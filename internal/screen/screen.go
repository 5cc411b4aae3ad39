/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package screen models the displays a player window can live on. The
// geometry engine only reads three rectangles per display, so callers supply
// them through a Resolver instead of the engine enumerating displays itself.
package screen

import (
	"sync"

	"pwinlayout/internal/geom"
)

// Screen is one display. VisibleFrame excludes the menu bar and dock.
// CameraHousingHeight is the height of the notch strip at the top of Frame,
// or 0 for displays without one.
type Screen struct {
	ID                  string    `json:"id" yaml:"id"`
	Frame               geom.Rect `json:"frame" yaml:"frame"`
	VisibleFrame        geom.Rect `json:"visibleFrame" yaml:"visible_frame"`
	CameraHousingHeight float64   `json:"cameraHousingHeight,omitempty" yaml:"camera_housing_height"`
}

// FrameWithoutCameraHousing trims the notch strip from the top of Frame.
func (s Screen) FrameWithoutCameraHousing() geom.Rect {
	f := s.Frame
	if s.CameraHousingHeight > 0 {
		f.H -= s.CameraHousingHeight
	}
	return f
}

func (s Screen) HasCameraHousing() bool { return s.CameraHousingHeight > 0 }

// MenuBarHeight is the strip between the top of VisibleFrame and the top of Frame.
func (s Screen) MenuBarHeight() float64 {
	return s.Frame.MaxY() - s.VisibleFrame.MaxY()
}

// Default is a 1920x1080 display with a 25pt menu bar at the origin.
func Default() Screen {
	return Screen{
		ID:           "main",
		Frame:        geom.R(0, 0, 1920, 1080),
		VisibleFrame: geom.R(0, 0, 1920, 1055),
	}
}

// Resolver maps a screen ID to a Screen. Implementations must fall back to a
// default display for unknown IDs.
type Resolver interface {
	Resolve(id string) Screen
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string) Screen

func (f ResolverFunc) Resolve(id string) Screen { return f(id) }

// Static is a fixed set of screens; the first one is the default.
type Static struct {
	mu      sync.RWMutex
	screens []Screen
}

// NewStatic returns a resolver over screens. With no screens it serves Default().
func NewStatic(screens ...Screen) *Static {
	if len(screens) == 0 {
		screens = []Screen{Default()}
	}
	cp := make([]Screen, len(screens))
	copy(cp, screens)
	return &Static{screens: cp}
}

func (s *Static) Resolve(id string) Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.screens {
		if sc.ID == id {
			return sc
		}
	}
	return s.screens[0]
}

// Screens returns a copy of the configured displays.
func (s *Static) Screens() []Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Screen, len(s.screens))
	copy(out, s.screens)
	return out
}

// Replace swaps the display list, e.g. after a display was disconnected.
func (s *Static) Replace(screens ...Screen) {
	if len(screens) == 0 {
		screens = []Screen{Default()}
	}
	s.mu.Lock()
	s.screens = append([]Screen(nil), screens...)
	s.mu.Unlock()
}

// Containing returns the screen whose frame holds the center of r, or the
// default screen.
func (s *Static) Containing(r geom.Rect) Screen {
	c := r.Center()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.screens {
		if sc.Frame.Contains(c) {
			return sc
		}
	}
	return s.screens[0]
}
