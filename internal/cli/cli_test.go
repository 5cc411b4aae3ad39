/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/zalando/go-keyring"

	"pwinlayout/internal/config"
	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/store"
	"pwinlayout/internal/version"
)

func init() { keyring.MockInit() }

// setupConfig points the CLI at a config file whose SQLite store lives in a
// temp dir.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := "store:\n  driver: sqlite\n  path: " + filepath.Join(dir, "geo.db") + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	for _, k := range []string{config.EnvStoreDriver, config.EnvStorePath, config.EnvStoreDSN} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvConfigPath, cfgPath)
	return dir
}

// executeCommand runs a fresh command tree with args and returns captured output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	want := []string{"version", "geometry", "scale", "mpv", "crop", "render", "cache", "ui"}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, version.String()) {
		t.Fatalf("output %q does not contain %q", out, version.String())
	}
}

func TestGeometryJSON(t *testing.T) {
	setupConfig(t)
	out, err := executeCommand(t, "geometry", "--frame", "100,100,960,540", "--json")
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	g, err := store.Decode([]byte(strings.TrimSpace(out)))
	if err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if g.WindowFrame != geom.R(100, 100, 960, 540) {
		t.Fatalf("WindowFrame = %+v, want (100,100 960x540)", g.WindowFrame)
	}
	if g.VideoSize != geom.S(960, 540) {
		t.Fatalf("VideoSize = %+v, want 960x540", g.VideoSize)
	}
}

func TestGeometryText(t *testing.T) {
	setupConfig(t)
	out, err := executeCommand(t, "geometry", "--frame", "100,100,960,540", "--mode", "windowed")
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	for _, want := range []string{"Geometry", "windowed", "100,100 960x540"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGeometryBadFlags(t *testing.T) {
	setupConfig(t)
	if _, err := executeCommand(t, "geometry", "--video", "wide"); err == nil {
		t.Fatalf("expected error for bad --video")
	}
	if _, err := executeCommand(t, "geometry", "--mode", "cinema"); err == nil {
		t.Fatalf("expected error for bad --mode")
	}
	if _, err := executeCommand(t, "geometry", "--frame", "1,2,3"); err == nil {
		t.Fatalf("expected error for bad --frame")
	}
}

func TestMPV(t *testing.T) {
	setupConfig(t)
	out, err := executeCommand(t, "mpv", "640x360", "--frame", "100,100,960,540")
	if err != nil {
		t.Fatalf("mpv: %v", err)
	}
	if !strings.Contains(out, "640x360") {
		t.Fatalf("output missing 640x360:\n%s", out)
	}
	_, err = executeCommand(t, "mpv", "bogus!")
	if !errors.Is(err, pwin.ErrInvalidGeometryString) {
		t.Fatalf("err = %v, want ErrInvalidGeometryString", err)
	}
}

func TestScaleNeedsOneTarget(t *testing.T) {
	setupConfig(t)
	if _, err := executeCommand(t, "scale"); err == nil {
		t.Fatalf("expected error without a target")
	}
	if _, err := executeCommand(t, "scale", "--viewport", "800x450", "--window", "800x450"); err == nil {
		t.Fatalf("expected error with two targets")
	}
	out, err := executeCommand(t, "scale", "--frame", "100,100,960,540", "--viewport", "640x360")
	if err != nil {
		t.Fatalf("scale: %v", err)
	}
	if !strings.Contains(out, "Before") || !strings.Contains(out, "After") {
		t.Fatalf("output missing sections:\n%s", out)
	}
}

func TestCropKeepsWindow(t *testing.T) {
	setupConfig(t)
	out, err := executeCommand(t, "crop", "960x1080+0+0", "--frame", "100,100,960,540")
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if !strings.Contains(out, "Cropped 960x1080+0+0") {
		t.Fatalf("output missing crop title:\n%s", out)
	}
	_, after, _ := strings.Cut(out, "Cropped")
	if !strings.Contains(after, "100,100 960x540") {
		t.Fatalf("window frame changed by crop:\n%s", out)
	}
}

func TestRender(t *testing.T) {
	dir := setupConfig(t)
	png := filepath.Join(dir, "out", "g.png")
	if _, err := executeCommand(t, "render", "--frame", "100,100,960,540", "-o", png, "--scale", "0.25"); err != nil {
		t.Fatalf("render png: %v", err)
	}
	pdf := filepath.Join(dir, "g.pdf")
	if _, err := executeCommand(t, "render", "--format", "pdf", "-o", pdf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	for _, p := range []string{png, pdf} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	if _, err := executeCommand(t, "render", "--format", "svg"); err == nil {
		t.Fatalf("expected error for svg")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := setupConfig(t)
	if _, err := executeCommand(t, "cache", "save", "--slot", "w1", "--frame", "100,100,960,540"); err != nil {
		t.Fatalf("cache save: %v", err)
	}
	out, err := executeCommand(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	if !strings.Contains(out, "w1") {
		t.Fatalf("list missing slot:\n%s", out)
	}
	out, err = executeCommand(t, "cache", "load", "w1")
	if err != nil {
		t.Fatalf("cache load: %v", err)
	}
	if !strings.Contains(out, "100,100 960x540") {
		t.Fatalf("load output:\n%s", out)
	}

	exp := filepath.Join(dir, "export.json")
	if _, err := executeCommand(t, "cache", "export", exp); err != nil {
		t.Fatalf("cache export: %v", err)
	}
	if _, err := executeCommand(t, "cache", "delete", "w1"); err != nil {
		t.Fatalf("cache delete: %v", err)
	}
	if _, err := executeCommand(t, "cache", "load", "w1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("load after delete err = %v, want ErrNotFound", err)
	}
	if _, err := executeCommand(t, "cache", "import", exp); err != nil {
		t.Fatalf("cache import: %v", err)
	}
	if _, err := executeCommand(t, "cache", "load", "w1"); err != nil {
		t.Fatalf("load after import: %v", err)
	}
}

func TestCachePassword(t *testing.T) {
	setupConfig(t)
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader("s3cret\n"))
	root.SetArgs([]string{"cache", "password"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache password: %v", err)
	}
	pw, err := config.StorePassword()
	if err != nil || pw != "s3cret" {
		t.Fatalf("StorePassword = %q, %v; want s3cret", pw, err)
	}
	if _, err := executeCommand(t, "cache", "password", "--clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if pw, _ := config.StorePassword(); pw != "" {
		t.Fatalf("password after clear = %q", pw)
	}
}

func TestUIStub(t *testing.T) {
	setupConfig(t)
	if _, err := executeCommand(t, "ui"); err == nil {
		t.Fatalf("expected the stub UI to fail in a non-fyne build")
	}
}

func TestParseHelpers(t *testing.T) {
	if s, err := parseSize("1280X720"); err != nil || s != geom.S(1280, 720) {
		t.Fatalf("parseSize = %v, %v", s, err)
	}
	for _, bad := range []string{"", "1280", "0x720", "ax b"} {
		if _, err := parseSize(bad); err == nil {
			t.Fatalf("parseSize(%q) accepted", bad)
		}
	}
	if r, err := parseRect(" 1, 2 ,3,4"); err != nil || r != geom.R(1, 2, 3, 4) {
		t.Fatalf("parseRect = %v, %v", r, err)
	}
	if _, err := parseRect("1,2,0,4"); err == nil {
		t.Fatalf("parseRect accepted zero width")
	}
}

func TestMPVNotifiesEndpoint(t *testing.T) {
	var mu sync.Mutex
	var events []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		if err := json.Unmarshal(b, &m); err == nil {
			mu.Lock()
			events = append(events, m)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	setupConfig(t)
	t.Setenv(config.EnvNotifyURL, srv.URL)
	if _, err := executeCommand(t, "mpv", "640x360", "--frame", "100,100,960,540", "--slot", "w2"); err != nil {
		t.Fatalf("mpv: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0]["event"] != "geometry" || events[0]["slot"] != "w2" {
		t.Fatalf("event = %v", events[0])
	}
}
