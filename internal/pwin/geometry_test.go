/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"math"
	"math/rand/v2"
	"testing"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/screen"
	"pwinlayout/internal/video"
)

func fullHDScreen() screen.Screen {
	return screen.Screen{ID: "main", Frame: geom.R(0, 0, 1920, 1080), VisibleFrame: geom.R(0, 0, 1920, 1080)}
}

func testEnv(lock bool) Env {
	env := NewEnv(fullHDScreen())
	env.Policy.LockViewportToVideoSize = lock
	return env
}

var hd = video.New(1920, 1080)

func windowed(frame geom.Rect) Params {
	return Params{WindowFrame: frame, ScreenID: "main", Fit: KeepInVisibleScreen, Mode: WindowedNormal, Video: hd}
}

func TestNewDerivesViewportAndVideo(t *testing.T) {
	p := windowed(geom.R(100, 100, 1400, 828))
	p.OutsideBars = geom.MarginQuad{Top: 28, Bottom: 44, Trailing: 100}
	g := New(p)
	if g.ViewportSize != geom.S(1300, 756) {
		t.Fatalf("ViewportSize = %+v, want 1300x756", g.ViewportSize)
	}
	if g.VideoSize != geom.S(1300, 731) {
		t.Fatalf("VideoSize = %+v, want 1300x731", g.VideoSize)
	}
	if g.ViewportMargins != (geom.MarginQuad{Top: 13, Bottom: 12}) {
		t.Fatalf("ViewportMargins = %+v", g.ViewportMargins)
	}
	if got := g.ViewportFrameInWindow(); got != geom.R(0, 44, 1300, 756) {
		t.Fatalf("ViewportFrameInWindow = %+v", got)
	}
	if got := g.VideoFrameInScreen(); got != geom.R(100, 156, 1300, 731) {
		t.Fatalf("VideoFrameInScreen = %+v", got)
	}
}

func TestNewClampsNegativeViewport(t *testing.T) {
	p := windowed(geom.R(0, 0, 100, 50))
	p.OutsideBars = geom.MarginQuad{Top: 40, Bottom: 40, Leading: 200}
	p.TopMarginHeight = 10
	g := New(p)
	if g.ViewportSize != (geom.Size{}) || g.VideoSize != (geom.Size{}) {
		t.Fatalf("viewport %+v video %+v, want zero", g.ViewportSize, g.VideoSize)
	}
	if g.checkInvariants() != nil {
		t.Fatalf("invariants: %v", g.checkInvariants())
	}
}

func TestCloneKeepsUnspecifiedFields(t *testing.T) {
	p := windowed(geom.R(10, 20, 800, 450))
	p.InsideBars = geom.MarginQuad{Trailing: 200}
	g := New(p)
	c := g.Clone(func(p *Params) { p.ScreenID = "other" })
	if c.ScreenID != "other" || c.WindowFrame != g.WindowFrame || c.InsideBars != g.InsideBars || c.Video != g.Video {
		t.Fatalf("Clone lost fields: %v", c)
	}
	if g.Clone(nil) != g {
		t.Fatalf("Clone(nil) differs from original")
	}
}

func TestExplicitMarginsAbsorbRemainder(t *testing.T) {
	p := windowed(geom.R(0, 0, 1000, 600))
	m := geom.MarginQuad{Leading: 100, Trailing: 100}
	p.ViewportMargins = &m
	g := New(p)
	// 800x600 box, 16:9 video -> 800x450, 150 vertical remainder
	if g.VideoSize != geom.S(800, 450) {
		t.Fatalf("VideoSize = %+v", g.VideoSize)
	}
	if g.ViewportMargins != (geom.MarginQuad{Top: 75, Trailing: 100, Bottom: 75, Leading: 100}) {
		t.Fatalf("ViewportMargins = %+v", g.ViewportMargins)
	}

	tooBig := geom.MarginQuad{Leading: 900, Trailing: 300}
	p.ViewportMargins = &tooBig
	g = New(p)
	if g.VideoSize != (geom.Size{}) || g.ViewportMargins.TotalWidth() != 1000 || g.ViewportMargins.Leading != 750 {
		t.Fatalf("oversized margins not scaled down: %+v video %+v", g.ViewportMargins, g.VideoSize)
	}
}

func TestInvariantsHoldForGeneratedInputs(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	modes := []Mode{WindowedNormal, FullScreenNormal, MusicMode, WindowedInteractive, FullScreenInteractive}
	for i := 0; i < 2000; i++ {
		p := Params{
			WindowFrame: geom.R(float64(r.IntN(500)), float64(r.IntN(500)), float64(r.IntN(2500)), float64(r.IntN(1500))),
			Mode:        modes[r.IntN(len(modes))],
			OutsideBars: geom.MarginQuad{
				Top: float64(r.IntN(80)), Trailing: float64(r.IntN(400)),
				Bottom: float64(r.IntN(120)), Leading: float64(r.IntN(400)),
			},
			InsideBars: geom.MarginQuad{
				Top: float64(r.IntN(80)), Trailing: float64(r.IntN(500)),
				Bottom: float64(r.IntN(80)), Leading: float64(r.IntN(500)),
			},
			TopMarginHeight: float64(r.IntN(2) * 32),
			Video:           video.New(float64(1+r.IntN(4000)), float64(1+r.IntN(3000))),
		}
		g := New(p)
		if g.ViewportMargins.TotalWidth()+g.VideoSize.W != g.ViewportSize.W ||
			g.ViewportMargins.TotalHeight()+g.VideoSize.H != g.ViewportSize.H {
			t.Fatalf("case %d: margins %+v + video %+v != viewport %+v", i, g.ViewportMargins, g.VideoSize, g.ViewportSize)
		}
		if err := g.checkInvariants(); err != nil {
			t.Fatalf("case %d: %v (%v)", i, err, g)
		}
	}
}

func TestComputeVideoSizePreservesAspect(t *testing.T) {
	aspects := []float64{1, 4.0 / 3.0, 16.0 / 9.0, 2.35, 2.39, 0.5625, 0.8, 3.7}
	for _, a := range aspects {
		for w := 40.0; w <= 2600; w += 97 {
			for h := 40.0; h <= 1600; h += 89 {
				v := geom.S(w, h)
				got := ComputeVideoSize(a, v, geom.ZeroMargins)
				if got.W > v.W || got.H > v.H {
					t.Fatalf("ComputeVideoSize(%v, %v) = %v exceeds viewport", a, v, got)
				}
				if math.Abs(got.W-got.H*a) > 1 && math.Abs(got.H-got.W/a) > 1 {
					t.Fatalf("ComputeVideoSize(%v, %v) = %v breaks aspect", a, v, got)
				}
				if got.W != v.W && got.H != v.H {
					t.Fatalf("ComputeVideoSize(%v, %v) = %v fills neither axis", a, v, got)
				}
			}
		}
	}
	if got := ComputeVideoSize(0, geom.S(100, 100), geom.ZeroMargins); got != (geom.Size{}) {
		t.Fatalf("zero aspect = %v, want zero size", got)
	}
	if got := ComputeVideoSize(-1, geom.S(100, 100), geom.ZeroMargins); got != (geom.Size{}) {
		t.Fatalf("negative aspect = %v, want zero size", got)
	}
}

func TestBestMarginsTrailingSidebarOnly(t *testing.T) {
	m := ComputeBestViewportMargins(geom.S(1000, 500), geom.S(800, 450), geom.MarginQuad{Trailing: 300}, WindowedNormal)
	if m.Leading != 0 || m.Trailing != 200 {
		t.Fatalf("leading/trailing = %v/%v, want 0/200", m.Leading, m.Trailing)
	}
	if m.Top != 25 || m.Bottom != 25 {
		t.Fatalf("top/bottom = %v/%v, want 25/25", m.Top, m.Bottom)
	}
}

func TestBestMarginsCases(t *testing.T) {
	cases := []struct {
		name           string
		viewportW      float64
		videoW         float64
		leadBar, trBar float64
		wantL, wantTr  float64
	}{
		{"centered clear of both", 1000, 600, 100, 100, 200, 200},
		{"no sidebars", 1000, 601, 0, 0, 199, 200},
		{"fits between, shift off trailing", 1000, 600, 50, 300, 100, 300},
		{"fits between, shift off leading", 1000, 600, 300, 50, 300, 100},
		{"leading sidebar only", 1000, 800, 300, 0, 200, 0},
		{"trailing sidebar only, too wide to clear it", 1000, 900, 0, 300, 0, 100},
		{"center in gap", 1000, 800, 150, 300, 25, 175},
		{"center in gap, deficit moved", 1000, 900, 300, 20, 100, 0},
		{"no unused width", 1000, 1000, 300, 300, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := ComputeBestViewportMargins(geom.S(c.viewportW, 400), geom.S(c.videoW, 400),
				geom.MarginQuad{Leading: c.leadBar, Trailing: c.trBar}, WindowedNormal)
			if m.Leading != c.wantL || m.Trailing != c.wantTr {
				t.Fatalf("leading/trailing = %v/%v, want %v/%v", m.Leading, m.Trailing, c.wantL, c.wantTr)
			}
		})
	}
}

func TestInteractiveMarginsNeverBelowGutter(t *testing.T) {
	env := testEnv(true)
	for w := 200.0; w <= 1900; w += 73 {
		for h := 150.0; h <= 1000; h += 61 {
			p := windowed(geom.R(0, 0, w, h))
			p.Mode = WindowedInteractive
			p.OutsideBars = geom.MarginQuad{Bottom: InteractiveModeBottomBarHeight}
			g := New(p)
			assertGutter(t, g)
			assertGutter(t, g.ScaleViewport(env, geom.S(w-10, h-90)))
		}
	}
}

func assertGutter(t *testing.T, g Geometry) {
	t.Helper()
	m, min := g.ViewportMargins, InteractiveViewportMargins
	if m.Top < min.Top || m.Bottom < min.Bottom || m.Leading < min.Leading || m.Trailing < min.Trailing {
		t.Fatalf("margins %+v below interactive gutter %+v (%v)", m, min, g)
	}
}

func TestInvalidVideoIsNoOp(t *testing.T) {
	env := testEnv(true)
	p := windowed(geom.R(0, 0, 800, 450))
	p.Video = video.Geometry{}
	g := New(p)
	if got := g.ScaleViewport(env, geom.S(400, 300)); got != g {
		t.Fatalf("ScaleViewport changed invalid geometry")
	}
	if got := g.ScaleVideo(env, geom.S(400, 300)); got != g {
		t.Fatalf("ScaleVideo changed invalid geometry")
	}
	if got := g.ResizeWindow(env, geom.S(400, 300)); got != g {
		t.Fatalf("ResizeWindow changed invalid geometry")
	}
	def, _ := ParseMPVGeometry("50%")
	if got := g.ApplyMPVGeometry(env, def, geom.S(800, 450)); got != g {
		t.Fatalf("ApplyMPVGeometry changed invalid geometry")
	}
}

func TestModeAndFitNames(t *testing.T) {
	for _, m := range []Mode{WindowedNormal, FullScreenNormal, MusicMode, WindowedInteractive, FullScreenInteractive} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("tiny"); err == nil {
		t.Fatalf("ParseMode should reject unknown names")
	}
	f, err := ParseScreenFit("NativeFullScreen")
	if err != nil || f != NativeFullScreen {
		t.Fatalf("ParseScreenFit = %v, %v", f, err)
	}
	if WindowedNormal.Interactive() != WindowedInteractive || FullScreenInteractive.NonInteractive() != FullScreenNormal {
		t.Fatalf("interactive mode mapping broken")
	}
}

func TestContainerFrameByFit(t *testing.T) {
	s := screen.Screen{ID: "n", Frame: geom.R(0, 0, 1512, 982), VisibleFrame: geom.R(0, 0, 1512, 945), CameraHousingHeight: 32}
	p := DefaultPolicy()
	if _, ok := NoConstraints.ContainerFrame(s, p); ok {
		t.Fatalf("NoConstraints should have no container")
	}
	if c, _ := KeepInVisibleScreen.ContainerFrame(s, p); c != s.VisibleFrame {
		t.Fatalf("visible container = %+v", c)
	}
	if c, _ := NativeFullScreen.ContainerFrame(s, p); c != geom.R(0, 0, 1512, 950) {
		t.Fatalf("native container = %+v", c)
	}
	if c, _ := LegacyFullScreen.ContainerFrame(s, p); c != geom.R(0, 0, 1512, 950) {
		t.Fatalf("legacy container = %+v", c)
	}
	p.AllowVideoToOverlapCameraHousing = true
	if c, _ := LegacyFullScreen.ContainerFrame(s, p); c != s.Frame {
		t.Fatalf("legacy overlap container = %+v", c)
	}
}
