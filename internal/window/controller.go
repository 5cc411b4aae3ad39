/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package window keeps the geometry state of one player window. Every
// change goes through a Controller, which recomputes the layout and the
// geometry and remembers where the window was in each mode.
package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/layout"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/undo"
	"pwinlayout/internal/video"
)

// ErrNoStore is returned by Snapshot and Restore when no Store was configured.
var ErrNoStore = errors.New("window: no store configured")

// Store persists geometries by slot name. store.Store satisfies it.
type Store interface {
	Save(ctx context.Context, slot string, g pwin.Geometry) error
	Load(ctx context.Context, slot string) (pwin.Geometry, bool, error)
}

// Options configure a new Controller.
type Options struct {
	// Frame is the initial window frame. Nil opens the window at the video's
	// natural size in the middle of the screen.
	Frame       *geom.Rect
	Mode        pwin.Mode
	Interactive layout.InteractiveMode

	Store Store
	// Slot names this window in the Store. Defaults to "main".
	Slot string

	// OnChange is called after every change with the new geometry, outside
	// the controller's lock.
	OnChange func(pwin.Geometry)
}

// Controller owns the current geometry and layout of one window plus the
// geometry it last had in windowed and music mode. It is safe for
// concurrent use.
type Controller struct {
	mu    sync.Mutex
	env   pwin.Env
	prefs layout.Preferences
	geo   pwin.Geometry
	lay   layout.State

	lastWindowed *pwin.Geometry
	lastMusic    *pwin.MusicModeGeometry
	// the last spec whose chrome followed the preferences, restored when
	// leaving music or interactive mode
	lastFreeSpec *layout.Spec

	store    Store
	slot     string
	onChange func(pwin.Geometry)
	videos   chan video.Geometry
	history  *undo.History[state]
}

// state is what Undo and Redo restore, including what the window remembers
// about the modes it is not in.
type state struct {
	geo pwin.Geometry
	lay layout.State

	lastWindowed *pwin.Geometry
	lastMusic    *pwin.MusicModeGeometry
	lastFreeSpec *layout.Spec
}

func (c *Controller) stateLocked() state {
	return state{geo: c.geo, lay: c.lay, lastWindowed: c.lastWindowed, lastMusic: c.lastMusic, lastFreeSpec: c.lastFreeSpec}
}

const (
	historyDepth = 50
	// live resize steps closer together than this undo as one step
	liveResizeCoalesce = 500 * time.Millisecond
)

func logger(op string) *slog.Logger {
	return applog.WithOperation(applog.WithComponent("window"), op)
}

// New builds the initial layout and geometry of a window showing v on
// screenID. The env policy is taken from prefs.
func New(env pwin.Env, prefs layout.Preferences, screenID string, v video.Geometry, opts Options) *Controller {
	env.Policy = prefs.Policy()
	mode := opts.Mode
	spec := layout.FromPreferences(prefs, layout.SpecOptions{Mode: &mode, InteractiveMode: opts.Interactive})
	st := layout.BuildFrom(spec)

	var g pwin.Geometry
	if opts.Frame != nil {
		g = st.BuildGeometry(env, *opts.Frame, screenID, v)
	} else {
		g = st.BuildDefaultInitialGeometry(env, screenID, v)
	}
	slot := opts.Slot
	if slot == "" {
		slot = "main"
	}
	return &Controller{
		env:      env,
		prefs:    prefs,
		geo:      g,
		lay:      st,
		store:    opts.Store,
		slot:     slot,
		onChange: opts.OnChange,
		videos:   make(chan video.Geometry, 1),
		history:  undo.New[state](undo.Config{MaxDepth: historyDepth, MinInterval: liveResizeCoalesce}),
	}
}

func (c *Controller) Geometry() pwin.Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geo
}

func (c *Controller) Layout() layout.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lay
}

func (c *Controller) Preferences() layout.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Env returns the environment the controller computes against.
func (c *Controller) Env() pwin.Env {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.env
}

// update runs fn under the lock and reports the resulting geometry. A change
// is recorded for Undo under key; changes sharing a non-empty key in quick
// succession undo together.
func (c *Controller) update(key string, fn func() pwin.Geometry) pwin.Geometry {
	c.mu.Lock()
	prev := c.stateLocked()
	g := fn()
	c.geo = g
	if g != prev.geo || c.lay.Spec != prev.lay.Spec {
		c.history.Push(key, prev)
	}
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(g)
	}
	return g
}

// Undo reverts the last recorded change and reports whether there was one.
func (c *Controller) Undo() (pwin.Geometry, bool) {
	return c.travel(c.history.Undo)
}

// Redo reapplies the last undone change.
func (c *Controller) Redo() (pwin.Geometry, bool) {
	return c.travel(c.history.Redo)
}

func (c *Controller) travel(step func(state) (state, bool)) (pwin.Geometry, bool) {
	c.mu.Lock()
	s, ok := step(c.stateLocked())
	if !ok {
		g := c.geo
		c.mu.Unlock()
		return g, false
	}
	c.geo, c.lay = s.geo, s.lay
	c.lastWindowed, c.lastMusic, c.lastFreeSpec = s.lastWindowed, s.lastMusic, s.lastFreeSpec
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(s.geo)
	}
	return s.geo, true
}

// relayoutLocked moves the window onto st. keepFullScreenDimensions keeps
// a windowed window that spans the screen spanning it.
func (c *Controller) relayoutLocked(st layout.State, keepFullScreenDimensions bool) pwin.Geometry {
	cur := c.geo
	c.lay = st
	spec := st.Spec
	switch {
	case spec.IsFullScreen():
		return st.BuildFullScreenGeometry(c.env, cur.ScreenID, cur.Video)
	case spec.IsMusicMode():
		if cur.Mode == pwin.MusicMode {
			return st.BuildGeometry(c.env, cur.WindowFrame, cur.ScreenID, cur.Video)
		}
		if c.lastMusic != nil {
			m := *c.lastMusic
			m.Video = cur.Video
			return m.Refit(c.env).ToPWinGeometry()
		}
		return pwin.DefaultMusicModeGeometry(c.env, cur.ScreenID, cur.Video).ToPWinGeometry()
	}
	if cur.Mode.IsWindowed() {
		return st.ConvertWindowedModeGeometry(c.env, cur, nil, keepFullScreenDimensions, 0)
	}
	if c.lastWindowed != nil {
		v := cur.Video
		return st.ConvertWindowedModeGeometry(c.env, *c.lastWindowed, &v, false, 0)
	}
	return st.BuildDefaultInitialGeometry(c.env, cur.ScreenID, cur.Video)
}

// rememberLocked records the current geometry as the last one of its mode.
func (c *Controller) rememberLocked() {
	g := c.geo
	switch {
	case g.Mode == pwin.WindowedNormal:
		c.lastWindowed = &g
	case g.Mode == pwin.MusicMode:
		m := pwin.MusicModeGeometryFrom(g)
		c.lastMusic = &m
	}
}

// ApplyPreferences rebuilds the layout from prefs, keeping the sidebar
// state and the mode.
func (c *Controller) ApplyPreferences(prefs layout.Preferences) pwin.Geometry {
	return c.update("", func() pwin.Geometry {
		c.prefs = prefs
		c.env.Policy = prefs.Policy()
		prev := c.lay.Spec
		spec := layout.FromPreferences(prefs, layout.SpecOptions{FillingInFrom: &prev})
		return c.relayoutLocked(layout.BuildFrom(spec), false)
	})
}

// SetSidebar shows or hides a sidebar. A non-empty tab selects the sidebar
// hosting it; otherwise loc is toggled and reopens its last tab.
func (c *Controller) SetSidebar(loc layout.SidebarLocation, visible bool, tab layout.Tab) pwin.Geometry {
	return c.update("", func() pwin.Geometry {
		spec := c.lay.Spec
		if tab != "" {
			spec = spec.WithSidebarTab(tab, visible)
		} else {
			spec = spec.WithSidebarVisible(loc, visible)
		}
		if spec == c.lay.Spec {
			return c.geo
		}
		return c.relayoutLocked(layout.BuildFrom(spec), true)
	})
}

// EnterMode switches the window to mode. The geometry of the mode being
// left is remembered and restored when the window comes back to it.
func (c *Controller) EnterMode(mode pwin.Mode, interactive layout.InteractiveMode) pwin.Geometry {
	return c.update("", func() pwin.Geometry {
		cur := c.lay.Spec
		var spec layout.Spec
		if fixedChrome(cur) && !fixedChrome(cur.WithMode(mode, interactive)) {
			spec = layout.FromPreferences(c.prefs, layout.SpecOptions{
				Mode:            &mode,
				InteractiveMode: interactive,
				FillingInFrom:   c.lastFreeSpec,
			})
		} else {
			spec = cur.WithMode(mode, interactive)
		}
		switch {
		case c.geo.Mode.IsFullScreen() && spec.IsFullScreen():
			// the style only changes between full screen sessions
		case spec.IsFullScreen():
			spec.IsLegacyStyle = c.prefs.UseLegacyFullScreen
		default:
			spec.IsLegacyStyle = c.prefs.UseLegacyWindowedMode
		}
		if spec == c.lay.Spec {
			return c.geo
		}
		logger("enter_mode").Debug("mode change",
			slog.String("from", c.geo.Mode.String()), slog.String("to", spec.Mode.String()))
		if spec.Mode != c.geo.Mode {
			c.rememberLocked()
		}
		if !fixedChrome(cur) && fixedChrome(spec) {
			c.lastFreeSpec = &cur
		}
		return c.relayoutLocked(layout.BuildFrom(spec), false)
	})
}

// fixedChrome reports specs whose bars and sidebars are forced by the mode.
func fixedChrome(s layout.Spec) bool { return s.IsMusicMode() || s.IsInteractive() }

func cropOnly(a, b video.Geometry) bool {
	return a.RawWidth == b.RawWidth && a.RawHeight == b.RawHeight &&
		a.Rotation == b.Rotation && a.AspectOverride == b.AspectOverride && a.Crop != b.Crop
}

// SetVideo replaces the video. A pure crop change keeps the window frame and
// turns the cropped part into margins; other changes refit the window around
// the new aspect ratio.
func (c *Controller) SetVideo(v video.Geometry) pwin.Geometry {
	return c.update("", func() pwin.Geometry {
		cur := c.geo
		if v == cur.Video {
			return cur
		}
		if !v.IsValid() {
			logger("set_video").Warn("ignoring invalid video", slog.String("video", v.String()))
			return cur
		}
		if cropOnly(cur.Video, v) && cur.Mode != pwin.MusicMode {
			return cur.CropVideo(v)
		}
		switch {
		case c.lay.Spec.IsFullScreen():
			return c.lay.BuildFullScreenGeometry(c.env, cur.ScreenID, v)
		case c.lay.Spec.IsMusicMode():
			return c.lay.BuildGeometry(c.env, cur.WindowFrame, cur.ScreenID, v)
		}
		g := cur.Clone(func(p *pwin.Params) { p.Video = v })
		return g.ScaleViewport(c.env, g.ViewportSize)
	})
}

// Resize applies a window size requested by the user. live marks a drag in
// progress; resizingWidth says which axis the user drags.
func (c *Controller) Resize(size geom.Size, live, resizingWidth bool) pwin.Geometry {
	key := ""
	if live {
		key = "live-resize"
	}
	return c.update(key, func() pwin.Geometry {
		if c.geo.Fit.IsFullScreen() {
			return c.geo
		}
		if c.geo.Mode == pwin.MusicMode {
			m := pwin.MusicModeGeometryFrom(c.geo)
			m.WindowFrame.W = size.W
			return m.Refit(c.env).ToPWinGeometry()
		}
		var opts []pwin.ScaleOption
		if live {
			opts = append(opts, pwin.LiveResize(resizingWidth))
		}
		return c.geo.ResizeWindow(c.env, size, opts...)
	})
}

// ApplyMPVGeometry applies an mpv --geometry value to a windowed window.
func (c *Controller) ApplyMPVGeometry(s string) (pwin.Geometry, error) {
	def, err := pwin.ParseMPVGeometry(s)
	if err != nil {
		return c.Geometry(), fmt.Errorf("apply mpv geometry: %w", err)
	}
	return c.update("", func() pwin.Geometry {
		if !c.geo.Mode.IsWindowed() {
			logger("apply_mpv_geometry").Info("not windowed, ignoring", slog.String("geometry", s))
			return c.geo
		}
		return c.geo.ApplyMPVGeometry(c.env, def, c.geo.WindowFrame.Size())
	}), nil
}

// ReplaceScreens swaps the screen resolver, e.g. after a display was
// attached, and refits the window to its container.
func (c *Controller) ReplaceScreens(r func(pwin.Env) pwin.Env) pwin.Geometry {
	return c.update("", func() pwin.Geometry {
		c.env = r(c.env)
		cur := c.geo
		switch {
		case cur.Fit.IsFullScreen():
			return c.lay.BuildFullScreenGeometry(c.env, cur.ScreenID, cur.Video)
		case cur.Mode == pwin.MusicMode:
			return pwin.MusicModeGeometryFrom(cur).Refit(c.env).ToPWinGeometry()
		}
		return cur.Refit(c.env, cur.Fit)
	})
}

func (c *Controller) windowedSlot() string { return c.slot + ".windowed" }
func (c *Controller) musicSlot() string    { return c.slot + ".music" }

// Snapshot saves the current geometry and the remembered per-mode
// geometries to the store.
func (c *Controller) Snapshot(ctx context.Context) error {
	c.mu.Lock()
	st, g, slot := c.store, c.geo, c.slot
	lastW, lastM := c.lastWindowed, c.lastMusic
	c.mu.Unlock()
	if st == nil {
		return ErrNoStore
	}
	if err := st.Save(ctx, slot, g); err != nil {
		return fmt.Errorf("snapshot %s: %w", slot, err)
	}
	if lastW != nil {
		if err := st.Save(ctx, c.windowedSlot(), *lastW); err != nil {
			return fmt.Errorf("snapshot %s: %w", c.windowedSlot(), err)
		}
	}
	if lastM != nil {
		if err := st.Save(ctx, c.musicSlot(), lastM.ToPWinGeometry()); err != nil {
			return fmt.Errorf("snapshot %s: %w", c.musicSlot(), err)
		}
	}
	return nil
}

// Restore loads the remembered per-mode geometries and moves the window to
// the saved frame when the saved geometry is in the current mode. It
// reports whether a saved geometry was found.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	st, slot := c.store, c.slot
	c.mu.Unlock()
	if st == nil {
		return false, ErrNoStore
	}
	saved, ok, err := st.Load(ctx, slot)
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", slot, err)
	}
	lastW, okW, err := st.Load(ctx, c.windowedSlot())
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", c.windowedSlot(), err)
	}
	lastM, okM, err := st.Load(ctx, c.musicSlot())
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", c.musicSlot(), err)
	}

	c.update("", func() pwin.Geometry {
		if okW {
			c.lastWindowed = &lastW
		}
		if okM {
			m := pwin.MusicModeGeometryFrom(lastM)
			c.lastMusic = &m
		}
		cur := c.geo
		if !ok || saved.Mode != cur.Mode || cur.Fit.IsFullScreen() {
			return cur
		}
		return c.lay.BuildGeometry(c.env, saved.WindowFrame, saved.ScreenID, cur.Video)
	})
	// a restored window starts with a clean history
	c.history.Clear()
	return ok, nil
}

// PostVideo hands a video change to the Run loop. Pending changes that were
// not picked up yet are replaced, so only the latest one is applied.
func (c *Controller) PostVideo(v video.Geometry) {
	for {
		select {
		case c.videos <- v:
			return
		default:
		}
		select {
		case <-c.videos:
		default:
		}
	}
}

// Run applies posted video changes until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-c.videos:
			c.SetVideo(v)
		}
	}
}
