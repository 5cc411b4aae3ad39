/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/layout"
)

func init() { keyring.MockInit() }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.yaml")
	cfg, pw, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if pw != "" {
		t.Fatalf("password = %q, want empty", pw)
	}
	if cfg.Player.OSCPosition != "floating" || !cfg.Player.LockViewportToVideoSize {
		t.Fatalf("player defaults = %+v", cfg.Player)
	}
	if got, want := cfg.Store.Path, filepath.Join(filepath.Dir(path), "geometry.db"); got != want {
		t.Fatalf("Store.Path = %q, want %q", got, want)
	}
}

func TestLoadFileKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := writeConfig(t, `
player:
  osc_position: top
  playlist_width: 300
screens:
  - id: builtin
    frame: {x: 0, y: 0, w: 1512, h: 982}
    visible_frame: {x: 0, y: 0, w: 1512, h: 950}
    camera_housing_height: 32
  - id: external
    frame: {x: 1512, y: 0, w: 2560, h: 1440}
logging:
  level: DEBUG
`)
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Player.EnableOSC || !cfg.Player.LockViewportToVideoSize {
		t.Fatalf("absent booleans lost their defaults: %+v", cfg.Player)
	}
	prefs := cfg.Player.Preferences()
	if prefs.OSCPosition != layout.OSCTop || prefs.PlaylistWidth != 300 {
		t.Fatalf("prefs = %+v", prefs)
	}
	if len(cfg.Screens) != 2 || cfg.Screens[0].CameraHousingHeight != 32 {
		t.Fatalf("screens = %+v", cfg.Screens)
	}
	if cfg.Screens[1].VisibleFrame != geom.R(1512, 0, 2560, 1440) {
		t.Fatalf("visible frame not defaulted: %v", cfg.Screens[1].VisibleFrame)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	if _, _, err := Load(writeConfig(t, "player: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPreferencesFallBackOnBadEnum(t *testing.T) {
	p := Defaults().Player
	p.OSCPosition = "diagonal"
	p.TopBarPlacement = "outsideViewport"
	prefs := p.Preferences()
	if prefs.OSCPosition != layout.OSCFloating {
		t.Fatalf("OSCPosition = %v, want floating", prefs.OSCPosition)
	}
	if prefs.TopBarPlacement != layout.OutsideViewport {
		t.Fatalf("TopBarPlacement = %v", prefs.TopBarPlacement)
	}
}

func TestDefaultsRoundTripPreferences(t *testing.T) {
	if got, want := Defaults().Player.Preferences(), layout.DefaultPreferences(); got != want {
		t.Fatalf("Preferences() = %+v, want %+v", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvStoreDriver, "Postgres")
	t.Setenv(EnvStoreDSN, "postgres://pwl@localhost/pwl")
	t.Setenv(EnvLockViewport, "off")
	t.Setenv(EnvLogFormat, "JSON")
	cfg, _, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DSN != "postgres://pwl@localhost/pwl" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if cfg.Player.LockViewportToVideoSize {
		t.Fatalf("LockViewportToVideoSize expected false from env override")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("Logging.Format = %q", cfg.Logging.Format)
	}
	if name, ok := EnvOverrideFor("store.dsn"); !ok || name != EnvStoreDSN {
		t.Fatalf("EnvOverrideFor(store.dsn) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("logging.file reported as overridden")
	}
}

func TestConfigPathEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/pwl/custom.yaml")
	p, err := ConfigPath()
	if err != nil || p != "/tmp/pwl/custom.yaml" {
		t.Fatalf("ConfigPath() = %q, %v", p, err)
	}
}

func TestSaveAndPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Defaults()
	cfg.Player.OSCPosition = "bottom"
	if err := Save(path, cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, pw, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Player.OSCPosition != "bottom" || pw != "s3cret" {
		t.Fatalf("loaded osc=%q pw=%q", got.Player.OSCPosition, pw)
	}
	data, _ := os.ReadFile(path)
	if len(data) == 0 || strings.Contains(string(data), "s3cret") {
		t.Fatalf("password written to disk")
	}
	if err := DeleteStorePassword(); err != nil {
		t.Fatalf("DeleteStorePassword() = %v", err)
	}
	if err := DeleteStorePassword(); err != nil {
		t.Fatalf("second delete = %v", err)
	}
	if pw, _ := StorePassword(); pw != "" {
		t.Fatalf("password still present: %q", pw)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("postgres without dsn accepted")
	}
	cfg = Defaults()
	cfg.Store.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown driver accepted")
	}
	if len(Defaults().ScreenList()) != 1 {
		t.Fatalf("ScreenList should fall back to the default display")
	}
}

func TestValidateNotify(t *testing.T) {
	for _, bad := range []string{"ftp://example.com/x", "example.com/hook", "http://"} {
		cfg := Defaults()
		cfg.Notify.URL = bad
		if err := cfg.Validate(); err == nil {
			t.Fatalf("notify.url %q accepted", bad)
		}
	}
	cfg := Defaults()
	cfg.Notify.URL = "https://example.com/hook"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid notify.url rejected: %v", err)
	}
	cfg.Notify.TimeoutMS = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("negative timeout accepted")
	}
}

func TestNotifyURLFromEnv(t *testing.T) {
	t.Setenv(EnvNotifyURL, " http://127.0.0.1:9/hook ")
	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notify.URL != "http://127.0.0.1:9/hook" {
		t.Fatalf("Notify.URL = %q", cfg.Notify.URL)
	}
	if name, ok := EnvOverrideFor("notify.url"); !ok || name != EnvNotifyURL {
		t.Fatalf("EnvOverrideFor = %q,%v", name, ok)
	}
}
