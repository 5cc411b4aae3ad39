//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pwinlayout/internal/crash"
	"pwinlayout/internal/export"
	"pwinlayout/internal/layout"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/screen"
	"pwinlayout/internal/version"
	"pwinlayout/internal/window"
)

// Run opens the preview window for ctrl and blocks until it is closed.
func Run(ctrl *window.Controller) error {
	defer crash.Recover(ctrl)
	l := applog.WithComponent("ui")
	l.Info("starting preview UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("pwinlayout")
	w := fyneApp.NewWindow("Player window geometry")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	w.Resize(fyne.NewSize(float32(max(winW, 640)), float32(max(winH, 480))))

	gc := NewGeometryCanvas()
	status := widget.NewLabel("")
	refresh := func(g pwin.Geometry) {
		scr := ctrl.Env().Screen(g.ScreenID)
		gc.SetGeometry(g, &scr)
		status.SetText(g.String())
	}

	playlistBtn := widget.NewButton("Toggle playlist", func() {
		loc, show := togglePlaylist(ctrl.Layout().Spec)
		refresh(ctrl.SetSidebar(loc, show, ""))
	})

	modeSel := widget.NewSelect(ModeChoices, func(s string) {
		m, im, err := modeFromChoice(s)
		if err != nil {
			l.Warn("unknown mode", slog.String("mode", s))
			return
		}
		refresh(ctrl.EnterMode(m, im))
	})
	modeSel.SetSelected(ctrl.Geometry().Mode.NonInteractive().String())

	oscSel := widget.NewSelect(OSCChoices, func(s string) {
		p := ctrl.Preferences()
		pos, err := layout.ParseOSCPosition(s)
		if err != nil {
			l.Warn("unknown OSC position", slog.String("position", s))
			return
		}
		p.OSCPosition = pos
		refresh(ctrl.ApplyPreferences(p))
	})
	oscSel.SetSelected(ctrl.Preferences().OSCPosition.String())

	legacyCheck := widget.NewCheck("Legacy full screen", func(v bool) {
		p := ctrl.Preferences()
		p.UseLegacyFullScreen = v
		refresh(ctrl.ApplyPreferences(p))
	})
	legacyCheck.SetChecked(ctrl.Preferences().UseLegacyFullScreen)

	undoBtn := widget.NewButton("Undo", func() {
		if g, ok := ctrl.Undo(); ok {
			refresh(g)
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if g, ok := ctrl.Redo(); ok {
			refresh(g)
		}
	})

	toolbar := container.NewHBox(playlistBtn, modeSel, oscSel, legacyCheck, undoBtn, redoBtn)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, gc))
	refresh(ctrl.Geometry())

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("preview UI closed")
	})
	w.ShowAndRun()
	return nil
}

// GeometryCanvas draws the boxes of one geometry scaled to the widget size.
type GeometryCanvas struct {
	widget.BaseWidget
	boxes []export.Box
}

func NewGeometryCanvas() *GeometryCanvas {
	gc := &GeometryCanvas{}
	gc.ExtendBaseWidget(gc)
	return gc
}

// SetGeometry replaces the drawn geometry. scr may be nil.
func (gc *GeometryCanvas) SetGeometry(g pwin.Geometry, scr *screen.Screen) {
	gc.boxes = export.Boxes(g, scr)
	gc.Refresh()
}

func (gc *GeometryCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	r := &geometryCanvasRenderer{gc: gc, bg: bg}
	r.sync()
	return r
}

// PreferredSize sets a decent default size for the widget.
func (gc *GeometryCanvas) PreferredSize() fyne.Size { return fyne.NewSize(640, 400) }

type geometryCanvasRenderer struct {
	gc      *GeometryCanvas
	bg      *canvas.Rectangle
	rects   []*canvas.Rectangle
	labels  []*canvas.Text
	objects []fyne.CanvasObject
}

// sync rebuilds the scene objects when the number of boxes changed and
// restyles them.
func (r *geometryCanvasRenderer) sync() {
	boxes := r.gc.boxes
	if len(r.rects) != len(boxes) {
		r.rects = make([]*canvas.Rectangle, len(boxes))
		r.labels = make([]*canvas.Text, len(boxes))
		r.objects = []fyne.CanvasObject{r.bg}
		for i := range boxes {
			r.rects[i] = canvas.NewRectangle(color.Transparent)
			r.rects[i].StrokeWidth = 1
			r.labels[i] = canvas.NewText("", color.White)
			r.labels[i].TextSize = 10
			r.objects = append(r.objects, r.rects[i])
		}
		for _, t := range r.labels {
			r.objects = append(r.objects, t)
		}
	}
	for i, b := range boxes {
		fill, stroke := export.Style(b.Kind)
		r.rects[i].FillColor = fill
		r.rects[i].StrokeColor = stroke
		r.labels[i].Text = b.Label
	}
}

func (r *geometryCanvasRenderer) Destroy()                     {}
func (r *geometryCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *geometryCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 200) }

func (r *geometryCanvasRenderer) Refresh() {
	r.sync()
	r.Layout(r.gc.Size())
	canvas.Refresh(r.gc)
}

func (r *geometryCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Move(fyne.NewPos(0, 0))
	r.bg.Resize(size)
	places := Place(r.gc.boxes, size.Width, size.Height, 12)
	for i, p := range places {
		if i >= len(r.rects) {
			break
		}
		r.rects[i].Move(fyne.NewPos(p.X, p.Y))
		r.rects[i].Resize(fyne.NewSize(p.W, p.H))
		lbl := r.labels[i]
		lbl.Move(fyne.NewPos(p.X+3, p.Y+2))
		if p.H < lbl.TextSize+4 {
			lbl.Hide()
		} else {
			lbl.Show()
		}
	}
}
