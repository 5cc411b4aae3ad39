/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pwinlayout/internal/config"
	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/video"
	"pwinlayout/internal/window"
)

var _ window.Store = (*SQLStore)(nil)

func sampleGeometry() pwin.Geometry {
	return pwin.New(pwin.Params{
		WindowFrame: geom.R(100, 100, 960, 540),
		ScreenID:    "main",
		Fit:         pwin.KeepInVisibleScreen,
		Mode:        pwin.WindowedNormal,
		InsideBars:  geom.MarginQuad{Top: 28},
		Video:       video.New(1920, 1080),
	})
}

func croppedGeometry() pwin.Geometry {
	return sampleGeometry().CropVideo(video.New(1920, 1080).WithCrop(geom.R(480, 0, 960, 1080)))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, g := range []pwin.Geometry{sampleGeometry(), croppedGeometry()} {
		data, err := Encode(g)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != g {
			t.Fatalf("round trip = %v, want %v", got, g)
		}
	}
}

func TestEncodeOmitsEmptyCrop(t *testing.T) {
	data, err := Encode(sampleGeometry())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), `"crop"`) {
		t.Fatalf("uncropped video encoded a crop: %s", data)
	}
	if !strings.Contains(string(data), `"mode":"windowed"`) {
		t.Fatalf("mode missing: %s", data)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	good, _ := Encode(sampleGeometry())
	cases := map[string]string{
		"not json":       `{`,
		"wrong version":  strings.Replace(string(good), `"version":1`, `"version":2`, 1),
		"unknown mode":   strings.Replace(string(good), `"mode":"windowed"`, `"mode":"tiny"`, 1),
		"negative bar":   strings.Replace(string(good), `"insideBars":{"top":28`, `"insideBars":{"top":-1`, 1),
		"missing screen": strings.Replace(string(good), `"screenId":"main",`, ``, 1),
	}
	for name, doc := range cases {
		if doc == string(good) {
			t.Fatalf("%s: replacement did not apply", name)
		}
		if _, err := Decode([]byte(doc)); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: err = %v, want ErrInvalidRecord", name, err)
		}
	}
}

func openTestSQLite(t *testing.T) (*SQLStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "geometry.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, path := openTestSQLite(t)
	if v, err := s.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}

	if _, ok, err := s.Load(ctx, "main"); ok || err != nil {
		t.Fatalf("empty Load = %v, %v", ok, err)
	}
	g := sampleGeometry()
	if err := s.Save(ctx, "main", g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "main.windowed", croppedGeometry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// overwrite
	if err := s.Save(ctx, "main", g); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, ok, err := s.Load(ctx, "main")
	if err != nil || !ok || got != g {
		t.Fatalf("Load = %v, %v, %v", got, ok, err)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 || recs[0].Slot != "main" || recs[1].Slot != "main.windowed" {
		t.Fatalf("List = %+v", recs)
	}
	if time.Since(recs[0].SavedAt) > time.Minute {
		t.Fatalf("SavedAt = %v", recs[0].SavedAt)
	}

	if err := s.Delete(ctx, "main.windowed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "main.windowed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, " ", g); err == nil {
		t.Fatalf("blank slot accepted")
	}

	_ = s.Close()
	again, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if _, ok, err := again.Load(ctx, "main"); !ok || err != nil {
		t.Fatalf("reopened Load = %v, %v", ok, err)
	}
}

func TestSQLiteListSkipsCorruptRows(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestSQLite(t)
	if err := s.Save(ctx, "good", sampleGeometry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx, `INSERT INTO geometries (slot, data, saved_at) VALUES ('bad', '{"version":1}', '2025-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	recs, err := s.List(ctx)
	if err != nil || len(recs) != 1 || recs[0].Slot != "good" {
		t.Fatalf("List = %+v, %v", recs, err)
	}
	if _, _, err := s.Load(ctx, "bad"); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("Load(bad) = %v, want ErrInvalidRecord", err)
	}
}

func TestRebind(t *testing.T) {
	s := &SQLStore{dialect: "postgres"}
	if got := s.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	s.dialect = "sqlite"
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestOpenByConfig(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "g.db")}, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = st.Close()
	if _, err := Open(ctx, config.StoreConfig{Driver: "redis"}, ""); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "geometries.json")
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []Record{
		{Slot: "main", Geometry: sampleGeometry(), SavedAt: saved},
		{Slot: "main.windowed", Geometry: croppedGeometry(), SavedAt: saved},
	}
	if err := ExportFile(path, recs); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	// overwrite in place
	if err := ExportFile(path, recs); err != nil {
		t.Fatalf("ExportFile again: %v", err)
	}
	got, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if len(got) != 2 || got[1].Geometry != recs[1].Geometry || !got[0].SavedAt.Equal(saved) {
		t.Fatalf("ImportFile = %+v", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(bad, []byte(`{"version":7,"records":[]}`), 0o644)
	if _, err := ImportFile(bad); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("ImportFile(bad) = %v, want ErrInvalidRecord", err)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PWL_PG_DSN")
	if dsn == "" {
		t.Skip("PWL_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn, "")
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	slot := "test-" + time.Now().Format("150405.000000")
	if err := s.Save(ctx, slot, sampleGeometry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load(ctx, slot)
	if err != nil || !ok || got != sampleGeometry() {
		t.Fatalf("Load = %v, %v, %v", got, ok, err)
	}
	if err := s.Delete(ctx, slot); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
