/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"
	"log/slog"
	"strings"

	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
)

// PanelPlacement says whether a bar overlays the viewport or sits beside it.
type PanelPlacement int

const (
	InsideViewport PanelPlacement = iota
	OutsideViewport
)

// OSCPosition is where the on-screen controller lives.
type OSCPosition int

const (
	OSCFloating OSCPosition = iota
	OSCTop
	OSCBottom
)

// SidebarLocation is the window edge a sidebar is attached to.
type SidebarLocation int

const (
	LeadingSidebar SidebarLocation = iota
	TrailingSidebar
)

// InteractiveMode is the sub-mode of the interactive window modes.
// NoInteractiveMode is used outside of them.
type InteractiveMode int

const (
	NoInteractiveMode InteractiveMode = iota
	CropMode
	FreeSelectingMode
)

var (
	placementNames   = []string{"insideViewport", "outsideViewport"}
	oscPositionNames = []string{"floating", "top", "bottom"}
	locationNames    = []string{"leadingSidebar", "trailingSidebar"}
	interactiveNames = []string{"none", "crop", "freeSelecting"}
)

func name(names []string, i int, kind string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func lookup(names []string, s, kind string) (int, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(s, n) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func (p PanelPlacement) String() string  { return name(placementNames, int(p), "PanelPlacement") }
func (p OSCPosition) String() string     { return name(oscPositionNames, int(p), "OSCPosition") }
func (l SidebarLocation) String() string { return name(locationNames, int(l), "SidebarLocation") }
func (m InteractiveMode) String() string { return name(interactiveNames, int(m), "InteractiveMode") }

func ParsePanelPlacement(s string) (PanelPlacement, error) {
	i, err := lookup(placementNames, s, "panel placement")
	return PanelPlacement(i), err
}

func ParseOSCPosition(s string) (OSCPosition, error) {
	i, err := lookup(oscPositionNames, s, "OSC position")
	return OSCPosition(i), err
}

func ParseSidebarLocation(s string) (SidebarLocation, error) {
	i, err := lookup(locationNames, s, "sidebar location")
	return SidebarLocation(i), err
}

func ParseInteractiveMode(s string) (InteractiveMode, error) {
	i, err := lookup(interactiveNames, s, "interactive mode")
	return InteractiveMode(i), err
}

// orDefault returns def when s is empty or fails to parse; a bad value is
// logged under key.
func orDefault[T any](key, s string, def T, parse func(string) (T, error)) T {
	if strings.TrimSpace(s) == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		applog.WithOperation(applog.WithComponent("layout"), "prefs").
			Warn("invalid preference, using default", slog.String("key", key), slog.String("value", s), slog.Any("default", def))
		return def
	}
	return v
}

func ParsePanelPlacementOrDefault(key, s string, def PanelPlacement) PanelPlacement {
	return orDefault(key, s, def, ParsePanelPlacement)
}

func ParseOSCPositionOrDefault(key, s string, def OSCPosition) OSCPosition {
	return orDefault(key, s, def, ParseOSCPosition)
}

func ParseSidebarLocationOrDefault(key, s string, def SidebarLocation) SidebarLocation {
	return orDefault(key, s, def, ParseSidebarLocation)
}

// Preferences is the typed snapshot of every preference the layout reads.
type Preferences struct {
	TopBarPlacement    PanelPlacement
	BottomBarPlacement PanelPlacement
	EnableOSC          bool
	OSCPosition        OSCPosition
	OSCBarHeight       float64

	LeadingSidebarPlacement  PanelPlacement
	TrailingSidebarPlacement PanelPlacement
	SettingsTabGroupLocation SidebarLocation
	PlaylistTabGroupLocation SidebarLocation
	PlaylistWidth            float64
	SettingsWidth            float64

	ShowLeadingSidebarToggleButton  bool
	ShowTrailingSidebarToggleButton bool

	UseLegacyFullScreen   bool
	UseLegacyWindowedMode bool

	LockViewportToVideoSize             bool
	MoveWindowIntoVisibleScreenOnResize bool
	AllowVideoToOverlapCameraHousing    bool
}

const (
	DefaultPlaylistWidth = 270.0
	DefaultSettingsWidth = 360.0
	MinPlaylistWidth     = 240.0
	MaxPlaylistWidth     = 800.0
)

// DefaultPreferences are the values used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		TopBarPlacement:                     InsideViewport,
		BottomBarPlacement:                  InsideViewport,
		EnableOSC:                           true,
		OSCPosition:                         OSCFloating,
		OSCBarHeight:                        pwin.DefaultOSCBarHeight,
		LeadingSidebarPlacement:             InsideViewport,
		TrailingSidebarPlacement:            InsideViewport,
		SettingsTabGroupLocation:            TrailingSidebar,
		PlaylistTabGroupLocation:            TrailingSidebar,
		PlaylistWidth:                       DefaultPlaylistWidth,
		SettingsWidth:                       DefaultSettingsWidth,
		ShowLeadingSidebarToggleButton:      false,
		ShowTrailingSidebarToggleButton:     true,
		LockViewportToVideoSize:             true,
		MoveWindowIntoVisibleScreenOnResize: true,
	}
}

// Policy extracts the values the geometry algebra needs.
func (p Preferences) Policy() pwin.Policy {
	return pwin.Policy{
		LockViewportToVideoSize:             p.LockViewportToVideoSize,
		MoveWindowIntoVisibleScreenOnResize: p.MoveWindowIntoVisibleScreenOnResize,
		AllowVideoToOverlapCameraHousing:    p.AllowVideoToOverlapCameraHousing,
	}
}

// Normalized clamps numeric preferences into their valid ranges.
func (p Preferences) Normalized() Preferences {
	if p.OSCBarHeight <= 0 {
		p.OSCBarHeight = pwin.DefaultOSCBarHeight
	}
	switch {
	case p.PlaylistWidth <= 0:
		p.PlaylistWidth = DefaultPlaylistWidth
	case p.PlaylistWidth < MinPlaylistWidth:
		p.PlaylistWidth = MinPlaylistWidth
	case p.PlaylistWidth > MaxPlaylistWidth:
		p.PlaylistWidth = MaxPlaylistWidth
	}
	if p.SettingsWidth <= 0 {
		p.SettingsWidth = DefaultSettingsWidth
	}
	return p
}
