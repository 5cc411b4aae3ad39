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
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))
)

func rectString(r geom.Rect) string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.W, r.H)
}

func sizeString(s geom.Size) string { return fmt.Sprintf("%gx%g", s.W, s.H) }

func quadString(m geom.MarginQuad) string {
	return fmt.Sprintf("top %g  trailing %g  bottom %g  leading %g", m.Top, m.Trailing, m.Bottom, m.Leading)
}

// geometryRows lists the fields of g as label/value pairs.
func geometryRows(g pwin.Geometry) [][2]string {
	return [][2]string{
		{"mode", g.Mode.String()},
		{"fit", g.Fit.String()},
		{"screen", g.ScreenID},
		{"window", rectString(g.WindowFrame)},
		{"top margin", fmt.Sprintf("%g", g.TopMarginHeight)},
		{"outside bars", quadString(g.OutsideBars)},
		{"inside bars", quadString(g.InsideBars)},
		{"viewport", sizeString(g.ViewportSize)},
		{"viewport margins", quadString(g.ViewportMargins)},
		{"video", sizeString(g.VideoSize)},
		{"video in screen", rectString(g.VideoFrameInScreen())},
		{"source", g.Video.String()},
	}
}

func printGeometry(w io.Writer, title string, g pwin.Geometry) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	for _, row := range geometryRows(g) {
		b.WriteString(keyStyle.Render(row[0]))
		b.WriteString(valueStyle.Render(row[1]))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
