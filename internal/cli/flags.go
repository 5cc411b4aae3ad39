/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/layout"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/video"
	"pwinlayout/internal/window"
)

// windowFlags describe the window a command works on.
type windowFlags struct {
	screen  string
	video   string
	aspect  string
	crop    string
	rotate  int
	mode    string
	frame   string
	sidebar string
	slot    string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.screen, "screen", "", "screen id (default is the first configured screen)")
	fs.StringVar(&f.video, "video", "1920x1080", "raw video size WxH")
	fs.StringVar(&f.aspect, "aspect", "", "aspect override, W:H or decimal")
	fs.StringVar(&f.crop, "video-crop", "", "video crop WxH+X+Y applied before layout")
	fs.IntVar(&f.rotate, "rotate", 0, "video rotation in degrees (0, 90, 180, 270)")
	fs.StringVar(&f.mode, "mode", pwin.WindowedNormal.String(), "window mode")
	fs.StringVar(&f.frame, "frame", "", "window frame x,y,w,h in screen points (default is centered)")
	fs.StringVar(&f.sidebar, "sidebar", "", "sidebar tab to open (playlist, chapters, video, audio, sub)")
	fs.StringVar(&f.slot, "slot", "main", "store slot of this window")
}

func (f *windowFlags) videoGeometry() (video.Geometry, error) {
	sz, err := parseSize(f.video)
	if err != nil {
		return video.Geometry{}, fmt.Errorf("--video: %w", err)
	}
	v := video.New(sz.W, sz.H)
	if f.aspect != "" {
		a, err := video.ParseAspect(f.aspect)
		if err != nil {
			return video.Geometry{}, err
		}
		v = v.WithAspectOverride(a)
	}
	if f.rotate != 0 {
		v = v.WithRotation(f.rotate)
	}
	if f.crop != "" {
		r, err := video.ParseCrop(f.crop, v.RawSize())
		if err != nil {
			return video.Geometry{}, err
		}
		v = v.WithCrop(r)
	}
	return v, nil
}

// controller builds a window controller from the flags. st may be nil.
func (f *windowFlags) controller(a *app, st window.Store) (*window.Controller, error) {
	v, err := f.videoGeometry()
	if err != nil {
		return nil, err
	}
	mode, err := pwin.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	opts := window.Options{Mode: mode, Store: st, Slot: f.slot}
	if a.notifier.Enabled() {
		opts.OnChange = a.notifier.OnChange(f.slot)
	}
	if mode.IsInteractive() {
		opts.Interactive = layout.CropMode
	}
	if f.frame != "" {
		r, err := parseRect(f.frame)
		if err != nil {
			return nil, fmt.Errorf("--frame: %w", err)
		}
		opts.Frame = &r
	}
	screenID := f.screen
	if screenID == "" {
		screenID = a.env.Screen("").ID
	}
	ctrl := window.New(a.env, a.prefs, screenID, v, opts)
	if f.sidebar != "" {
		ctrl.SetSidebar(layout.TrailingSidebar, true, layout.Tab(f.sidebar))
	}
	return ctrl, nil
}

// parseSize reads "WxH".
func parseSize(s string) (geom.Size, error) {
	a, b, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geom.Size{}, fmt.Errorf("size %q: want WxH", s)
	}
	w, err1 := strconv.ParseFloat(a, 64)
	h, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return geom.Size{}, fmt.Errorf("size %q: want two positive numbers", s)
	}
	return geom.S(w, h), nil
}

// parseRect reads "x,y,w,h".
func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("rect %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geom.Rect{}, fmt.Errorf("rect %q: width and height must be positive", s)
	}
	return geom.R(v[0], v[1], v[2], v[3]), nil
}
