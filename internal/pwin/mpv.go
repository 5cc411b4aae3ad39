/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pwin

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pwinlayout/internal/geom"
)

var ErrInvalidGeometryString = errors.New("invalid mpv geometry")

// MPVGeometryDef is a parsed mpv --geometry value, [W[%]][xH[%]][+-X[%]+-Y[%]].
// Empty fields were not given. XSign "+" measures X from the left edge of the
// screen and "-" from the right; YSign "+" measures Y from the top edge and
// "-" from the bottom.
type MPVGeometryDef struct {
	W, H     string
	XSign, X string
	YSign, Y string
}

var mpvGeometryRe = regexp.MustCompile(`^((\d+%?)?(x(\d+%?))?)?(([-+])(-?\d+%?)([-+])(-?\d+%?))?$`)

// ParseMPVGeometry parses s. The empty string is rejected.
func ParseMPVGeometry(s string) (MPVGeometryDef, error) {
	s = strings.TrimSpace(s)
	m := mpvGeometryRe.FindStringSubmatch(s)
	if s == "" || m == nil {
		return MPVGeometryDef{}, fmt.Errorf("%w: %q", ErrInvalidGeometryString, s)
	}
	return MPVGeometryDef{W: m[2], H: m[4], XSign: m[6], X: m[7], YSign: m[8], Y: m[9]}, nil
}

func (d MPVGeometryDef) HasSize() bool     { return d.W != "" || d.H != "" }
func (d MPVGeometryDef) HasPosition() bool { return d.X != "" || d.Y != "" }

func (d MPVGeometryDef) String() string {
	var b strings.Builder
	b.WriteString(d.W)
	if d.H != "" {
		b.WriteString("x" + d.H)
	}
	if d.X != "" || d.Y != "" {
		b.WriteString(d.XSign + d.X + d.YSign + d.Y)
	}
	return b.String()
}

// mpvValue resolves "120" or "50%" against total.
func mpvValue(s string, total float64) float64 {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0
	}
	if pct {
		return total * v / 100
	}
	return v
}

// ApplyMPVGeometry sizes and places the window as mpv would for def. W and H
// size the viewport. A single dimension derives the other from the video
// aspect. Missing X or Y keeps the window's center on that axis. Values
// outside the screen are clamped rather than rejected.
func (g Geometry) ApplyMPVGeometry(env Env, def MPVGeometryDef, desiredWindowSize geom.Size) Geometry {
	lg := logger("apply_mpv_geometry")
	aspect := g.Video.AspectRatio()
	if !g.IsValid() {
		lg.Warn("invalid video aspect, keeping geometry", slog.Float64("aspect", aspect))
		return g
	}
	scr := env.Screen(g.ScreenID)
	container, ok := g.ContainerFrame(env)
	if !ok {
		container = scr.VisibleFrame
	}
	_, _, mode, lock, _ := g.resolve(env, nil)
	minM := MinViewportMargins(mode)
	minVP := MinViewportSize(mode)
	maxVP := container.Size().Sub(g.OutsideBarsTotalSize()).NonNegative()

	vp := desiredWindowSize.Sub(g.OutsideBarsTotalSize())
	heightFor := func(w float64) float64 { return math.Round((w-minM.TotalWidth())/aspect) + minM.TotalHeight() }
	widthFor := func(h float64) float64 { return math.Round((h-minM.TotalHeight())*aspect) + minM.TotalWidth() }
	switch {
	case def.W != "" && def.H != "":
		vp = geom.Size{W: mpvValue(def.W, container.W), H: mpvValue(def.H, container.H)}
	case def.W != "":
		vp.W = math.Max(minVP.W, mpvValue(def.W, container.W))
		vp.H = heightFor(vp.W)
		if vp.H > maxVP.H {
			vp.H = maxVP.H
			vp.W = widthFor(vp.H)
		}
	case def.H != "":
		vp.H = math.Max(minVP.H, mpvValue(def.H, container.H))
		vp.W = widthFor(vp.H)
		if vp.W > maxVP.W {
			vp.W = maxVP.W
			vp.H = heightFor(vp.W)
		}
	}
	vp = vp.ClampedTo(minVP, maxVP)
	if lock {
		vp = lockedViewport(aspect, vp, mode)
	}
	vp = vp.AtLeast(minVP).Rounded()

	frame := g.WindowFrame.CenteredResize(vp.Add(g.OutsideBarsTotalSize()))
	if def.X != "" {
		x := mpvValue(def.X, container.W-frame.W)
		if def.XSign == "-" {
			frame.X = container.MaxX() - x - frame.W
		} else {
			frame.X = container.X + x
		}
	}
	if def.Y != "" {
		y := mpvValue(def.Y, container.H-frame.H)
		if def.YSign == "-" {
			frame.Y = container.Y + y
		} else {
			frame.Y = container.MaxY() - y - frame.H
		}
	}
	frame.X, frame.Y = math.Round(frame.X), math.Round(frame.Y)
	if g.Fit.ShouldMoveWindowToKeepInContainer(env.Policy) {
		frame = frame.ConstrainedIn(container)
	}
	lg.Debug("applied", slog.String("def", def.String()), slog.Float64("w", frame.W), slog.Float64("h", frame.H))
	return g.Clone(func(p *Params) { p.WindowFrame = frame })
}
