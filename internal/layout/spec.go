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

	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
)

// Tab is a sidebar tab. The empty Tab means no tab is shown.
type Tab string

const (
	TabPlaylist Tab = "playlist"
	TabChapters Tab = "chapters"
	TabVideo    Tab = "video"
	TabAudio    Tab = "audio"
	TabSubtitle Tab = "sub"
)

// TabGroup is a set of tabs that always share a sidebar.
type TabGroup uint8

const (
	SettingsGroup TabGroup = 1 << iota
	PlaylistGroup
)

func (t Tab) Group() TabGroup {
	switch t {
	case TabPlaylist, TabChapters:
		return PlaylistGroup
	case TabVideo, TabAudio, TabSubtitle:
		return SettingsGroup
	}
	return 0
}

// DefaultTab is the tab shown when a group is opened without a remembered tab.
func (g TabGroup) DefaultTab() Tab {
	if g == PlaylistGroup {
		return TabPlaylist
	}
	return TabVideo
}

// Sidebar is one of the two sidebars of a window.
type Sidebar struct {
	Location       SidebarLocation
	Placement      PanelPlacement
	TabGroups      TabGroup
	VisibleTab     Tab
	LastVisibleTab Tab
	PlaylistWidth  float64
	SettingsWidth  float64
}

func (s Sidebar) IsVisible() bool { return s.VisibleTab != "" }

// Hosts reports whether the sidebar carries the group of tab.
func (s Sidebar) Hosts(tab Tab) bool { return tab.Group() != 0 && s.TabGroups&tab.Group() != 0 }

// CurrentWidth is the width of the visible tab's group, or 0 when hidden.
func (s Sidebar) CurrentWidth() float64 {
	switch {
	case !s.IsVisible():
		return 0
	case s.VisibleTab.Group() == PlaylistGroup:
		return s.PlaylistWidth
	default:
		return s.SettingsWidth
	}
}

func (s Sidebar) InsideWidth() float64 {
	if s.Placement == InsideViewport {
		return s.CurrentWidth()
	}
	return 0
}

func (s Sidebar) OutsideWidth() float64 {
	if s.Placement == OutsideViewport {
		return s.CurrentWidth()
	}
	return 0
}

// Show makes tab visible. Tabs of groups the sidebar does not host are ignored.
func (s Sidebar) Show(tab Tab) Sidebar {
	if !s.Hosts(tab) {
		return s
	}
	s.VisibleTab = tab
	s.LastVisibleTab = tab
	return s
}

func (s Sidebar) Hide() Sidebar {
	if s.VisibleTab != "" {
		s.LastVisibleTab = s.VisibleTab
	}
	s.VisibleTab = ""
	return s
}

// Spec is the configuration of a window's chrome: which panels exist, where
// they are placed, and the window mode. Pixel measurements are derived from
// it by BuildFrom.
type Spec struct {
	Leading  Sidebar
	Trailing Sidebar

	Mode            pwin.Mode
	IsLegacyStyle   bool
	InteractiveMode InteractiveMode

	TopBarPlacement    PanelPlacement
	BottomBarPlacement PanelPlacement
	EnableOSC          bool
	OSCPosition        OSCPosition
	OSCBarHeight       float64

	ShowLeadingToggleButton  bool
	ShowTrailingToggleButton bool
}

// SpecOptions carry the per-window inputs of FromPreferences. Nil fields
// fall back to FillingInFrom, then to defaults.
type SpecOptions struct {
	Mode            *pwin.Mode
	IsLegacyStyle   *bool
	InteractiveMode InteractiveMode
	FillingInFrom   *Spec
}

// FromPreferences builds a Spec from prefs. Sidebar visibility and the
// selected tabs are carried over from opts.FillingInFrom because they are
// window state, not preferences.
func FromPreferences(prefs Preferences, opts SpecOptions) Spec {
	prefs = prefs.Normalized()
	prev := opts.FillingInFrom

	mode := pwin.WindowedNormal
	if opts.Mode != nil {
		mode = *opts.Mode
	} else if prev != nil {
		mode = prev.Mode
	}

	legacy := prefs.UseLegacyWindowedMode
	if mode.IsFullScreen() {
		legacy = prefs.UseLegacyFullScreen
	}
	if opts.IsLegacyStyle != nil {
		legacy = *opts.IsLegacyStyle
	}

	interactive := opts.InteractiveMode
	if interactive == NoInteractiveMode && prev != nil {
		interactive = prev.InteractiveMode
	}

	groupsAt := func(loc SidebarLocation) TabGroup {
		var g TabGroup
		if prefs.SettingsTabGroupLocation == loc {
			g |= SettingsGroup
		}
		if prefs.PlaylistTabGroupLocation == loc {
			g |= PlaylistGroup
		}
		return g
	}
	leading := Sidebar{
		Location:      LeadingSidebar,
		Placement:     prefs.LeadingSidebarPlacement,
		TabGroups:     groupsAt(LeadingSidebar),
		PlaylistWidth: prefs.PlaylistWidth,
		SettingsWidth: prefs.SettingsWidth,
	}
	trailing := leading
	trailing.Location = TrailingSidebar
	trailing.Placement = prefs.TrailingSidebarPlacement
	trailing.TabGroups = groupsAt(TrailingSidebar)

	if prev != nil {
		leading = carrySidebarState(leading, prev)
		trailing = carrySidebarState(trailing, prev)
	}

	s := Spec{
		Leading:                  leading,
		Trailing:                 trailing,
		Mode:                     mode,
		IsLegacyStyle:            legacy,
		InteractiveMode:          interactive,
		TopBarPlacement:          prefs.TopBarPlacement,
		BottomBarPlacement:       prefs.BottomBarPlacement,
		EnableOSC:                prefs.EnableOSC,
		OSCPosition:              prefs.OSCPosition,
		OSCBarHeight:             prefs.OSCBarHeight,
		ShowLeadingToggleButton:  prefs.ShowLeadingSidebarToggleButton,
		ShowTrailingToggleButton: prefs.ShowTrailingSidebarToggleButton,
	}
	return s.normalized()
}

// carrySidebarState copies visible and last tab from whichever previous
// sidebar showed them, as long as sb still hosts that tab.
func carrySidebarState(sb Sidebar, prev *Spec) Sidebar {
	for _, old := range []Sidebar{prev.Leading, prev.Trailing} {
		if old.VisibleTab != "" && sb.Hosts(old.VisibleTab) {
			sb.VisibleTab = old.VisibleTab
		}
		if old.LastVisibleTab != "" && sb.Hosts(old.LastVisibleTab) && old.Location == sb.Location {
			sb.LastVisibleTab = old.LastVisibleTab
		}
	}
	return sb
}

// normalized enforces the mode rules: the interactive sub-mode exists exactly
// in the interactive modes, and music and interactive modes use a fixed
// chrome. An interactive mode without a sub-mode becomes windowed, even when
// it was the full screen one.
func (s Spec) normalized() Spec {
	if s.Mode.IsInteractive() && s.InteractiveMode == NoInteractiveMode {
		applog.WithOperation(applog.WithComponent("layout"), "spec").
			Warn("interactive mode without sub-mode, correcting to windowed", slog.String("mode", s.Mode.String()))
		s.Mode = pwin.WindowedNormal
	}
	if !s.Mode.IsInteractive() {
		s.InteractiveMode = NoInteractiveMode
	}
	if s.Mode == pwin.MusicMode || s.Mode.IsInteractive() {
		s.Leading = s.Leading.Hide()
		s.Trailing = s.Trailing.Hide()
		s.TopBarPlacement = InsideViewport
		s.BottomBarPlacement = OutsideViewport
		s.EnableOSC = false
	}
	return s
}

func (s Spec) IsFullScreen() bool       { return s.Mode.IsFullScreen() }
func (s Spec) IsWindowed() bool         { return s.Mode.IsWindowed() }
func (s Spec) IsInteractive() bool      { return s.Mode.IsInteractive() }
func (s Spec) IsMusicMode() bool        { return s.Mode == pwin.MusicMode }
func (s Spec) IsNativeFullScreen() bool { return s.IsFullScreen() && !s.IsLegacyStyle }
func (s Spec) IsLegacyFullScreen() bool { return s.IsFullScreen() && s.IsLegacyStyle }

func (s Spec) OutsideLeadingBarWidth() float64  { return s.Leading.OutsideWidth() }
func (s Spec) InsideLeadingBarWidth() float64   { return s.Leading.InsideWidth() }
func (s Spec) OutsideTrailingBarWidth() float64 { return s.Trailing.OutsideWidth() }
func (s Spec) InsideTrailingBarWidth() float64  { return s.Trailing.InsideWidth() }

// ScreenFit is the fit used for geometry built from this spec.
func (s Spec) ScreenFit() pwin.ScreenFit {
	switch {
	case s.IsLegacyFullScreen():
		return pwin.LegacyFullScreen
	case s.IsNativeFullScreen():
		return pwin.NativeFullScreen
	}
	return pwin.KeepInVisibleScreen
}

func (s Spec) Sidebar(loc SidebarLocation) Sidebar {
	if loc == LeadingSidebar {
		return s.Leading
	}
	return s.Trailing
}

// SidebarFor returns the location hosting tab.
func (s Spec) SidebarFor(tab Tab) (SidebarLocation, bool) {
	switch {
	case s.Leading.Hosts(tab):
		return LeadingSidebar, true
	case s.Trailing.Hosts(tab):
		return TrailingSidebar, true
	}
	return 0, false
}

// WithSidebarTab shows tab in the sidebar that hosts it, or hides that
// sidebar when visible is false. Modes with fixed chrome ignore the request.
func (s Spec) WithSidebarTab(tab Tab, visible bool) Spec {
	loc, ok := s.SidebarFor(tab)
	if !ok || (visible && (s.IsMusicMode() || s.IsInteractive())) {
		return s
	}
	sb := s.Sidebar(loc)
	if visible {
		sb = sb.Show(tab)
	} else {
		sb = sb.Hide()
	}
	return s.withSidebar(sb)
}

// WithSidebarVisible toggles the sidebar at loc, reopening its last tab.
func (s Spec) WithSidebarVisible(loc SidebarLocation, visible bool) Spec {
	sb := s.Sidebar(loc)
	if !visible {
		return s.withSidebar(sb.Hide())
	}
	tab := sb.LastVisibleTab
	if !sb.Hosts(tab) {
		switch {
		case sb.TabGroups&PlaylistGroup != 0:
			tab = PlaylistGroup.DefaultTab()
		case sb.TabGroups&SettingsGroup != 0:
			tab = SettingsGroup.DefaultTab()
		default:
			return s
		}
	}
	return s.WithSidebarTab(tab, true)
}

func (s Spec) withSidebar(sb Sidebar) Spec {
	if sb.Location == LeadingSidebar {
		s.Leading = sb
	} else {
		s.Trailing = sb
	}
	return s
}

// WithMode returns the spec for another mode, re-applying the mode rules.
func (s Spec) WithMode(mode pwin.Mode, interactive InteractiveMode) Spec {
	s.Mode = mode
	s.InteractiveMode = interactive
	return s.normalized()
}
