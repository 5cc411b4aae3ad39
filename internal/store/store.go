/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store persists player window geometries so a window can reopen
// where it was closed. Records are JSON documents validated against an
// embedded schema; SQLite and PostgreSQL back the Store interface.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/video"
)

// FormatVersion is written into every encoded geometry.
const FormatVersion = 1

var (
	ErrNotFound      = errors.New("store: slot not found")
	ErrInvalidRecord = errors.New("store: invalid record")
)

//go:embed geometry.schema.json
var schemaJSON []byte

// Record is one saved geometry.
type Record struct {
	Slot     string        `json:"slot"`
	Geometry pwin.Geometry `json:"-"`
	SavedAt  time.Time     `json:"savedAt"`
}

// Store saves geometries by slot name.
type Store interface {
	Save(ctx context.Context, slot string, g pwin.Geometry) error
	Load(ctx context.Context, slot string) (pwin.Geometry, bool, error)
	Delete(ctx context.Context, slot string) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}

type rectJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type videoJSON struct {
	RawWidth       float64   `json:"rawWidth"`
	RawHeight      float64   `json:"rawHeight"`
	AspectOverride float64   `json:"aspectOverride,omitempty"`
	Rotation       int       `json:"rotation,omitempty"`
	Crop           *rectJSON `json:"crop,omitempty"`
}

// geometryJSON holds the inputs of a geometry. Derived sizes are recomputed
// on decode.
type geometryJSON struct {
	Version         int             `json:"version"`
	WindowFrame     rectJSON        `json:"windowFrame"`
	ScreenID        string          `json:"screenId"`
	Fit             string          `json:"fit"`
	Mode            string          `json:"mode"`
	TopMarginHeight float64         `json:"topMarginHeight,omitempty"`
	OutsideBars     geom.MarginQuad `json:"outsideBars"`
	InsideBars      geom.MarginQuad `json:"insideBars"`
	ViewportMargins geom.MarginQuad `json:"viewportMargins"`
	Video           videoJSON       `json:"video"`
}

func toRectJSON(r geom.Rect) rectJSON { return rectJSON{X: r.X, Y: r.Y, W: r.W, H: r.H} }
func (r rectJSON) rect() geom.Rect   { return geom.R(r.X, r.Y, r.W, r.H) }

// Encode serialises g.
func Encode(g pwin.Geometry) ([]byte, error) {
	v := videoJSON{
		RawWidth:       g.Video.RawWidth,
		RawHeight:      g.Video.RawHeight,
		AspectOverride: g.Video.AspectOverride,
		Rotation:       g.Video.Rotation,
	}
	if g.Video.HasCrop() {
		c := toRectJSON(g.Video.Crop)
		v.Crop = &c
	}
	return json.Marshal(geometryJSON{
		Version:         FormatVersion,
		WindowFrame:     toRectJSON(g.WindowFrame),
		ScreenID:        g.ScreenID,
		Fit:             g.Fit.String(),
		Mode:            g.Mode.String(),
		TopMarginHeight: g.TopMarginHeight,
		OutsideBars:     g.OutsideBars,
		InsideBars:      g.InsideBars,
		ViewportMargins: g.ViewportMargins,
		Video:           v,
	})
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Validate checks data against the geometry schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile geometry schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
	}
	return nil
}

// Decode validates and parses data, then rebuilds the geometry with the
// stored margins so derived sizes are consistent.
func Decode(data []byte) (pwin.Geometry, error) {
	if err := Validate(data); err != nil {
		return pwin.Geometry{}, err
	}
	var w geometryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return pwin.Geometry{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	fit, err := pwin.ParseScreenFit(w.Fit)
	if err != nil {
		return pwin.Geometry{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	mode, err := pwin.ParseMode(w.Mode)
	if err != nil {
		return pwin.Geometry{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	v := video.Geometry{
		RawWidth:       w.Video.RawWidth,
		RawHeight:      w.Video.RawHeight,
		AspectOverride: w.Video.AspectOverride,
		Rotation:       w.Video.Rotation,
	}
	if w.Video.Crop != nil {
		v.Crop = w.Video.Crop.rect()
	}
	margins := w.ViewportMargins
	return pwin.New(pwin.Params{
		WindowFrame:     w.WindowFrame.rect(),
		ScreenID:        w.ScreenID,
		Fit:             fit,
		Mode:            mode,
		TopMarginHeight: w.TopMarginHeight,
		OutsideBars:     w.OutsideBars,
		InsideBars:      w.InsideBars,
		ViewportMargins: &margins,
		Video:           v,
	}), nil
}
