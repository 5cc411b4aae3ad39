/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// MarginQuad holds four distances around a rectangle. It is used for bars
// placed outside the viewport, bars overlaying the viewport, and the margins
// between the viewport edge and the video.
type MarginQuad struct {
	Top      float64 `json:"top"`
	Trailing float64 `json:"trailing"`
	Bottom   float64 `json:"bottom"`
	Leading  float64 `json:"leading"`
}

var ZeroMargins = MarginQuad{}

// Uniform returns a quad with the same value on every side.
func Uniform(v float64) MarginQuad {
	return MarginQuad{Top: v, Trailing: v, Bottom: v, Leading: v}
}

func (m MarginQuad) TotalWidth() float64  { return m.Leading + m.Trailing }
func (m MarginQuad) TotalHeight() float64 { return m.Top + m.Bottom }
func (m MarginQuad) TotalSize() Size      { return Size{W: m.TotalWidth(), H: m.TotalHeight()} }

func (m MarginQuad) Add(o MarginQuad) MarginQuad {
	return MarginQuad{
		Top:      m.Top + o.Top,
		Trailing: m.Trailing + o.Trailing,
		Bottom:   m.Bottom + o.Bottom,
		Leading:  m.Leading + o.Leading,
	}
}

// IsValid reports whether no side is negative.
func (m MarginQuad) IsValid() bool {
	return m.Top >= 0 && m.Trailing >= 0 && m.Bottom >= 0 && m.Leading >= 0
}

// Clamped replaces negative sides with zero.
func (m MarginQuad) Clamped() MarginQuad {
	return MarginQuad{
		Top:      math.Max(0, m.Top),
		Trailing: math.Max(0, m.Trailing),
		Bottom:   math.Max(0, m.Bottom),
		Leading:  math.Max(0, m.Leading),
	}
}

func (m MarginQuad) Rounded() MarginQuad {
	return MarginQuad{
		Top:      math.Round(m.Top),
		Trailing: math.Round(m.Trailing),
		Bottom:   math.Round(m.Bottom),
		Leading:  math.Round(m.Leading),
	}
}

// Inset shrinks r by the quad. Leading is the left edge and bottom is the
// lower edge in the bottom-left coordinate space.
func (m MarginQuad) Inset(r Rect) Rect {
	return Rect{
		X: r.X + m.Leading,
		Y: r.Y + m.Bottom,
		W: r.W - m.TotalWidth(),
		H: r.H - m.TotalHeight(),
	}
}
