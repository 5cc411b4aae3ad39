/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
)

// Visibility of one chrome component.
type Visibility int

const (
	Hidden Visibility = iota
	ShowAlways
	ShowFadeableTopBar
	ShowFadeableNonTopBar
)

var visibilityNames = []string{"hidden", "showAlways", "showFadeableTopBar", "showFadeableNonTopBar"}

func (v Visibility) String() string { return name(visibilityNames, int(v), "Visibility") }
func (v Visibility) IsShowable() bool { return v != Hidden }
func (v Visibility) IsFadeable() bool {
	return v == ShowFadeableTopBar || v == ShowFadeableNonTopBar
}

// Sidebar tab metrics.
const (
	DefaultSidebarTabHeight   = 48.0
	MusicModeSidebarTabHeight = 32.0
	MinSidebarTabHeight       = 16.0
	MaxSidebarTabHeight       = 70.0
	DefaultSidebarDownshift   = 40.0
)

// State is a Spec compiled into visibility flags and bar sizes.
type State struct {
	Spec Spec

	TitleBar                    Visibility
	TitleIconAndText            Visibility
	TrafficLightButtons         Visibility
	TitlebarAccessoryViews      Visibility
	LeadingSidebarToggleButton  Visibility
	TrailingSidebarToggleButton Visibility
	TopBarView                  Visibility
	BottomBarView               Visibility
	FloatingOSC                 Visibility

	TitleBarHeight   float64
	TopOSCHeight     float64
	BottomOSCHeight  float64
	SidebarDownshift float64
	SidebarTabHeight float64
}

// BuildFrom applies the layout rules to spec.
func BuildFrom(spec Spec) State {
	st := State{Spec: spec, SidebarTabHeight: DefaultSidebarTabHeight}

	switch {
	case spec.IsNativeFullScreen():
		// The system draws the title bar over full screen content.
		st.TrafficLightButtons = ShowAlways
		st.TitleIconAndText = ShowAlways
	case spec.IsLegacyFullScreen():
		// nothing from the title bar row
	case spec.IsMusicMode(), spec.IsInteractive():
		// fixed chrome, no title bar
	default:
		vis := ShowAlways
		if spec.TopBarPlacement == InsideViewport {
			vis = ShowFadeableTopBar
		}
		st.TitlebarAccessoryViews = vis
		if !spec.IsLegacyStyle {
			st.TitleBar = vis
			st.TitleIconAndText = vis
			st.TrafficLightButtons = vis
			st.TopBarView = vis
			st.TitleBarHeight = pwin.StandardTitleBarHeight
		}
		if spec.ShowLeadingToggleButton {
			st.LeadingSidebarToggleButton = vis
		}
		if spec.ShowTrailingToggleButton {
			st.TrailingSidebarToggleButton = vis
		}
	}

	if spec.EnableOSC {
		switch spec.OSCPosition {
		case OSCFloating:
			st.FloatingOSC = ShowFadeableNonTopBar
		case OSCTop:
			if st.TitleBar.IsShowable() {
				st.TitleBarHeight = pwin.ReducedTitleBarHeight
			}
			if spec.TopBarPlacement == OutsideViewport && !spec.IsFullScreen() {
				st.TopBarView = ShowAlways
			} else {
				st.TopBarView = ShowFadeableTopBar
			}
			st.TopOSCHeight = spec.OSCBarHeight
		case OSCBottom:
			if spec.BottomBarPlacement == OutsideViewport && !spec.IsFullScreen() {
				st.BottomBarView = ShowAlways
			} else {
				st.BottomBarView = ShowFadeableNonTopBar
			}
			st.BottomOSCHeight = spec.OSCBarHeight
		}
	} else if spec.IsMusicMode() || spec.IsInteractive() {
		st.BottomBarView = ShowAlways
	}

	switch {
	case spec.IsMusicMode():
		st.SidebarTabHeight = MusicModeSidebarTabHeight
	case spec.TopBarPlacement == InsideViewport:
		st.SidebarDownshift = st.TopBarHeight()
		if h := st.TopOSCHeight; h >= MinSidebarTabHeight && h <= MaxSidebarTabHeight {
			st.SidebarTabHeight = h
		}
	default:
		st.SidebarDownshift = DefaultSidebarDownshift
	}
	return st
}

func (st State) HasTopOSC() bool      { return st.TopOSCHeight > 0 }
func (st State) HasBottomOSC() bool   { return st.BottomOSCHeight > 0 }
func (st State) HasFloatingOSC() bool { return st.FloatingOSC.IsShowable() }

// TopBarHeight is the title bar row plus a top OSC.
func (st State) TopBarHeight() float64 {
	if !st.TopBarView.IsShowable() {
		return 0
	}
	return st.TitleBarHeight + st.TopOSCHeight
}

func (st State) topBarOutside() bool {
	return st.Spec.TopBarPlacement == OutsideViewport && !st.Spec.IsFullScreen()
}

func (st State) bottomBarOutside() bool {
	return st.Spec.BottomBarPlacement == OutsideViewport && !st.Spec.IsFullScreen() || st.Spec.IsMusicMode() || st.Spec.IsInteractive()
}

func (st State) OutsideTopBarHeight() float64 {
	if st.topBarOutside() {
		return st.TopBarHeight()
	}
	return 0
}

func (st State) InsideTopBarHeight() float64 {
	if st.topBarOutside() {
		return 0
	}
	return st.TopBarHeight()
}

// BottomBarHeight is the bottom OSC, or the fixed bottom bar of music and
// interactive modes.
func (st State) BottomBarHeight() float64 {
	switch {
	case !st.BottomBarView.IsShowable():
		return 0
	case st.Spec.IsMusicMode():
		return pwin.MusicModeControlBarHeight
	case st.Spec.IsInteractive():
		return pwin.InteractiveModeBottomBarHeight
	}
	return st.BottomOSCHeight
}

func (st State) OutsideBottomBarHeight() float64 {
	if st.bottomBarOutside() {
		return st.BottomBarHeight()
	}
	return 0
}

func (st State) InsideBottomBarHeight() float64 {
	if st.bottomBarOutside() {
		return 0
	}
	return st.BottomBarHeight()
}

// OutsideBars are the bars placed beside the viewport.
func (st State) OutsideBars() geom.MarginQuad {
	return geom.MarginQuad{
		Top:      st.OutsideTopBarHeight(),
		Trailing: st.Spec.OutsideTrailingBarWidth(),
		Bottom:   st.OutsideBottomBarHeight(),
		Leading:  st.Spec.OutsideLeadingBarWidth(),
	}
}

// InsideBars are the bars overlaying the viewport.
func (st State) InsideBars() geom.MarginQuad {
	return geom.MarginQuad{
		Top:      st.InsideTopBarHeight(),
		Trailing: st.Spec.InsideTrailingBarWidth(),
		Bottom:   st.InsideBottomBarHeight(),
		Leading:  st.Spec.InsideLeadingBarWidth(),
	}
}
