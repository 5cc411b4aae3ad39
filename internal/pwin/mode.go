/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"fmt"
	"strings"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/screen"
)

// Mode is the window's operating mode. It selects the minimum-size and
// margin rules applied by every transformation.
type Mode int

const (
	WindowedNormal Mode = iota
	FullScreenNormal
	MusicMode
	WindowedInteractive
	FullScreenInteractive
)

var modeNames = [...]string{"windowed", "fullScreen", "musicMode", "windowedInteractive", "fullScreenInteractive"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts the names produced by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Mode(i), nil
		}
	}
	return WindowedNormal, fmt.Errorf("unknown window mode %q", s)
}

func (m Mode) IsFullScreen() bool  { return m == FullScreenNormal || m == FullScreenInteractive }
func (m Mode) IsInteractive() bool { return m == WindowedInteractive || m == FullScreenInteractive }
func (m Mode) IsWindowed() bool    { return m == WindowedNormal || m == WindowedInteractive }

// AlwaysLocksViewport reports modes whose viewport always wraps the video.
func (m Mode) AlwaysLocksViewport() bool { return m == MusicMode || m == WindowedInteractive }

// NonInteractive maps an interactive mode to its normal counterpart.
func (m Mode) NonInteractive() Mode {
	switch m {
	case WindowedInteractive:
		return WindowedNormal
	case FullScreenInteractive:
		return FullScreenNormal
	}
	return m
}

// Interactive maps a normal mode to its interactive counterpart. Music mode
// has none and is returned unchanged.
func (m Mode) Interactive() Mode {
	switch m {
	case WindowedNormal:
		return WindowedInteractive
	case FullScreenNormal:
		return FullScreenInteractive
	}
	return m
}

// ScreenFit selects the rectangle a window is constrained to.
type ScreenFit int

const (
	NoConstraints ScreenFit = iota
	KeepInVisibleScreen
	StayInsideScreen
	LegacyFullScreen
	NativeFullScreen
)

var fitNames = [...]string{"noConstraints", "keepInVisibleScreen", "stayInside", "legacyFullScreen", "nativeFullScreen"}

func (f ScreenFit) String() string {
	if f < 0 || int(f) >= len(fitNames) {
		return fmt.Sprintf("ScreenFit(%d)", int(f))
	}
	return fitNames[f]
}

func ParseScreenFit(s string) (ScreenFit, error) {
	for i, n := range fitNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return ScreenFit(i), nil
		}
	}
	return KeepInVisibleScreen, fmt.Errorf("unknown screen fit %q", s)
}

func (f ScreenFit) IsFullScreen() bool { return f == LegacyFullScreen || f == NativeFullScreen }

// ShouldMoveWindowToKeepInContainer reports whether a resized window is slid
// back inside its container.
func (f ScreenFit) ShouldMoveWindowToKeepInContainer(p Policy) bool {
	switch f {
	case KeepInVisibleScreen:
		return p.MoveWindowIntoVisibleScreenOnResize
	case StayInsideScreen, LegacyFullScreen, NativeFullScreen:
		return true
	}
	return false
}

// ContainerFrame resolves the rectangle that bounds a window with this fit on
// s. The second result is false for NoConstraints.
func (f ScreenFit) ContainerFrame(s screen.Screen, p Policy) (geom.Rect, bool) {
	switch f {
	case KeepInVisibleScreen:
		return s.VisibleFrame, true
	case StayInsideScreen, NativeFullScreen:
		return s.FrameWithoutCameraHousing(), true
	case LegacyFullScreen:
		if p.AllowVideoToOverlapCameraHousing {
			return s.Frame, true
		}
		return s.FrameWithoutCameraHousing(), true
	}
	return geom.Rect{}, false
}

// Policy carries the preference values the geometry algebra depends on.
type Policy struct {
	LockViewportToVideoSize             bool
	MoveWindowIntoVisibleScreenOnResize bool
	AllowVideoToOverlapCameraHousing    bool
}

// DefaultPolicy matches the preference defaults.
func DefaultPolicy() Policy {
	return Policy{LockViewportToVideoSize: true, MoveWindowIntoVisibleScreenOnResize: true}
}

// Env is the read-only context of a transformation: a way to resolve screens
// and the active policy.
type Env struct {
	Screens screen.Resolver
	Policy  Policy
}

// NewEnv returns an Env over a fixed set of screens with the default policy.
func NewEnv(screens ...screen.Screen) Env {
	return Env{Screens: screen.NewStatic(screens...), Policy: DefaultPolicy()}
}

func (e Env) Screen(id string) screen.Screen {
	if e.Screens == nil {
		return screen.Default()
	}
	return e.Screens.Resolve(id)
}

// Sizes in screen points.
var (
	MinVideoSize = geom.Size{W: 32, H: 32}

	// InteractiveViewportMargins is the gutter kept around the video for the
	// crop handles in interactive modes.
	InteractiveViewportMargins = geom.MarginQuad{Top: 16, Trailing: 24, Bottom: 16, Leading: 24}
)

const (
	InteractiveModeBottomBarHeight = 68.0

	StandardTitleBarHeight = 28.0
	ReducedTitleBarHeight  = 16.0
	DefaultOSCBarHeight    = 44.0

	MusicModeMinWindowWidth     = 275.0
	MusicModeDefaultWindowWidth = 280.0
	MusicModeControlBarHeight   = 72.0
	MusicModeMinPlaylistHeight  = 138.0

	WindowOpenOffset = 30.0
)

// MinViewportMargins is the margin the mode reserves around the video.
func MinViewportMargins(m Mode) geom.MarginQuad {
	if m.IsInteractive() {
		return InteractiveViewportMargins
	}
	return geom.ZeroMargins
}

// MinViewportSize is the smallest viewport the mode allows.
func MinViewportSize(m Mode) geom.Size {
	if m == MusicMode {
		return geom.Size{W: MusicModeMinWindowWidth}
	}
	return MinVideoSize.Add(MinViewportMargins(m).TotalSize())
}
