/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pwinlayout/internal/layout"
	applog "pwinlayout/internal/log"
	"pwinlayout/internal/screen"
)

// Config is the user-editable configuration persisted as YAML in the user
// scope. Environment variables are read-only overrides applied at load time.
// The store password is not part of it; it lives in the OS keyring.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type Config struct {
	ConfigVersion int             `yaml:"config_version"`
	Player        PlayerConfig    `yaml:"player"`
	Screens       []screen.Screen `yaml:"screens"`
	Store         StoreConfig     `yaml:"store"`
	Logging       LoggingConfig   `yaml:"logging"`
	Notify        NotifyConfig    `yaml:"notify"`
}

// PlayerConfig mirrors layout.Preferences with enums spelled as strings.
type PlayerConfig struct {
	TopBarPlacement          string  `yaml:"top_bar_placement"`
	BottomBarPlacement       string  `yaml:"bottom_bar_placement"`
	EnableOSC                bool    `yaml:"enable_osc"`
	OSCPosition              string  `yaml:"osc_position"`
	OSCBarHeight             float64 `yaml:"osc_bar_height"`
	LeadingSidebarPlacement  string  `yaml:"leading_sidebar_placement"`
	TrailingSidebarPlacement string  `yaml:"trailing_sidebar_placement"`
	SettingsTabGroupLocation string  `yaml:"settings_tab_group_location"`
	PlaylistTabGroupLocation string  `yaml:"playlist_tab_group_location"`
	PlaylistWidth            float64 `yaml:"playlist_width"`
	SettingsWidth            float64 `yaml:"settings_width"`

	ShowLeadingSidebarToggleButton  bool `yaml:"show_leading_sidebar_toggle_button"`
	ShowTrailingSidebarToggleButton bool `yaml:"show_trailing_sidebar_toggle_button"`

	UseLegacyFullScreen   bool `yaml:"use_legacy_full_screen"`
	UseLegacyWindowedMode bool `yaml:"use_legacy_windowed_mode"`

	LockViewportToVideoSize             bool `yaml:"lock_viewport_to_video_size"`
	MoveWindowIntoVisibleScreenOnResize bool `yaml:"move_window_into_visible_screen_on_resize"`
	AllowVideoToOverlapCameraHousing    bool `yaml:"allow_video_to_overlap_camera_housing"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres"
	Path   string `yaml:"path"`   // sqlite file; defaults next to the config file
	DSN    string `yaml:"dsn"`    // postgres connection string without password
}

// NotifyConfig enables geometry change events posted to an HTTP endpoint.
type NotifyConfig struct {
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Debug     bool   `yaml:"debug"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	p := layout.DefaultPreferences()
	return Config{
		ConfigVersion: 1,
		Player: PlayerConfig{
			TopBarPlacement:                     p.TopBarPlacement.String(),
			BottomBarPlacement:                  p.BottomBarPlacement.String(),
			EnableOSC:                           p.EnableOSC,
			OSCPosition:                         p.OSCPosition.String(),
			OSCBarHeight:                        p.OSCBarHeight,
			LeadingSidebarPlacement:             p.LeadingSidebarPlacement.String(),
			TrailingSidebarPlacement:            p.TrailingSidebarPlacement.String(),
			SettingsTabGroupLocation:            p.SettingsTabGroupLocation.String(),
			PlaylistTabGroupLocation:            p.PlaylistTabGroupLocation.String(),
			PlaylistWidth:                       p.PlaylistWidth,
			SettingsWidth:                       p.SettingsWidth,
			ShowLeadingSidebarToggleButton:      p.ShowLeadingSidebarToggleButton,
			ShowTrailingSidebarToggleButton:     p.ShowTrailingSidebarToggleButton,
			UseLegacyFullScreen:                 p.UseLegacyFullScreen,
			UseLegacyWindowedMode:               p.UseLegacyWindowedMode,
			LockViewportToVideoSize:             p.LockViewportToVideoSize,
			MoveWindowIntoVisibleScreenOnResize: p.MoveWindowIntoVisibleScreenOnResize,
			AllowVideoToOverlapCameraHousing:    p.AllowVideoToOverlapCameraHousing,
		},
		Store:   StoreConfig{Driver: "sqlite"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Preferences converts the player section. Unknown enum spellings fall back
// to the defaults and are logged.
func (p PlayerConfig) Preferences() layout.Preferences {
	d := layout.DefaultPreferences()
	return layout.Preferences{
		TopBarPlacement:                     layout.ParsePanelPlacementOrDefault("player.top_bar_placement", p.TopBarPlacement, d.TopBarPlacement),
		BottomBarPlacement:                  layout.ParsePanelPlacementOrDefault("player.bottom_bar_placement", p.BottomBarPlacement, d.BottomBarPlacement),
		EnableOSC:                           p.EnableOSC,
		OSCPosition:                         layout.ParseOSCPositionOrDefault("player.osc_position", p.OSCPosition, d.OSCPosition),
		OSCBarHeight:                        p.OSCBarHeight,
		LeadingSidebarPlacement:             layout.ParsePanelPlacementOrDefault("player.leading_sidebar_placement", p.LeadingSidebarPlacement, d.LeadingSidebarPlacement),
		TrailingSidebarPlacement:            layout.ParsePanelPlacementOrDefault("player.trailing_sidebar_placement", p.TrailingSidebarPlacement, d.TrailingSidebarPlacement),
		SettingsTabGroupLocation:            layout.ParseSidebarLocationOrDefault("player.settings_tab_group_location", p.SettingsTabGroupLocation, d.SettingsTabGroupLocation),
		PlaylistTabGroupLocation:            layout.ParseSidebarLocationOrDefault("player.playlist_tab_group_location", p.PlaylistTabGroupLocation, d.PlaylistTabGroupLocation),
		PlaylistWidth:                       p.PlaylistWidth,
		SettingsWidth:                       p.SettingsWidth,
		ShowLeadingSidebarToggleButton:      p.ShowLeadingSidebarToggleButton,
		ShowTrailingSidebarToggleButton:     p.ShowTrailingSidebarToggleButton,
		UseLegacyFullScreen:                 p.UseLegacyFullScreen,
		UseLegacyWindowedMode:               p.UseLegacyWindowedMode,
		LockViewportToVideoSize:             p.LockViewportToVideoSize,
		MoveWindowIntoVisibleScreenOnResize: p.MoveWindowIntoVisibleScreenOnResize,
		AllowVideoToOverlapCameraHousing:    p.AllowVideoToOverlapCameraHousing,
	}.Normalized()
}

// ScreenList returns the configured screens, or the default display.
func (c Config) ScreenList() []screen.Screen {
	if len(c.Screens) == 0 {
		return []screen.Screen{screen.Default()}
	}
	return c.Screens
}

// Options converts the logging section for log.Init.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "PWL_CONFIG"
	EnvStoreDriver  = "PWL_STORE_DRIVER"
	EnvStorePath    = "PWL_STORE_PATH"
	EnvStoreDSN     = "PWL_STORE_DSN"
	EnvOSCPosition  = "PWL_OSC_POSITION"
	EnvLockViewport = "PWL_LOCK_VIEWPORT"
	EnvLegacyFS     = "PWL_LEGACY_FULL_SCREEN"
	EnvNotifyURL    = "PWL_NOTIFY_URL"

	// EnvLogLevel Logging envs, shared with log.FromEnv
	EnvLogLevel  = "PWL_LOG_LEVEL"
	EnvLogFormat = "PWL_LOG_FORMAT"
	EnvLogSource = "PWL_LOG_SOURCE"
	EnvLogFile   = "PWL_LOG_FILE"
)

// ConfigPath returns the per-user config file path. PWL_CONFIG wins.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "pwinlayout")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "pwinlayout")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "pwinlayout")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (ConfigPath when empty), applies
// defaults and environment overrides, and returns the store password from
// the keyring separately. A missing file is not an error.
func Load(path string) (Config, string, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, "", err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// absent keys keep their defaults
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), "", fmt.Errorf("parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read config %s: %w", path, err)
	}
	normalize(&cfg)
	if cfg.Store.Driver == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), "geometry.db")
	}
	applyEnvOverrides(&cfg)
	pw, _ := StorePassword()
	return cfg, pw, nil
}

// Save writes the config YAML to path (ConfigPath when empty) and stores a
// non-empty password in the OS keyring.
func Save(path string, cfg Config, password string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := SetStorePassword(password); err != nil {
			return err
		}
	}
	return nil
}

func normalize(cfg *Config) {
	lower := func(s *string) { *s = strings.ToLower(strings.TrimSpace(*s)) }
	lower(&cfg.Store.Driver)
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	cfg.Store.Path = strings.TrimSpace(cfg.Store.Path)
	lower(&cfg.Logging.Level)
	lower(&cfg.Logging.Format)
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Notify.URL = strings.TrimSpace(cfg.Notify.URL)
	for i := range cfg.Screens {
		if cfg.Screens[i].VisibleFrame.IsEmpty() {
			cfg.Screens[i].VisibleFrame = cfg.Screens[i].Frame
		}
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDSN)); v != "" {
		cfg.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOSCPosition)); v != "" {
		cfg.Player.OSCPosition = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLockViewport)); v != "" {
		cfg.Player.LockViewportToVideoSize = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLegacyFS)); v != "" {
		cfg.Player.UseLegacyFullScreen = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvNotifyURL)); v != "" {
		cfg.Notify.URL = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"store.driver":                       EnvStoreDriver,
	"store.path":                         EnvStorePath,
	"store.dsn":                          EnvStoreDSN,
	"player.osc_position":                EnvOSCPosition,
	"player.lock_viewport_to_video_size": EnvLockViewport,
	"player.use_legacy_full_screen":      EnvLegacyFS,
	"notify.url":                         EnvNotifyURL,
	"logging.level":                      EnvLogLevel,
	"logging.format":                     EnvLogFormat,
	"logging.source":                     EnvLogSource,
	"logging.file":                       EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Validate reports configuration values the program cannot run with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	for i, s := range c.Screens {
		if s.Frame.IsEmpty() {
			return fmt.Errorf("screens[%d] (%s): empty frame", i, s.ID)
		}
		if !s.Frame.ContainsRect(s.VisibleFrame) {
			return fmt.Errorf("screens[%d] (%s): visible frame outside frame", i, s.ID)
		}
	}
	if c.Notify.URL != "" {
		u, err := url.Parse(c.Notify.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notify.url %q: want an http or https URL", c.Notify.URL)
		}
	}
	if c.Notify.TimeoutMS < 0 {
		return errors.New("notify.timeout_ms must not be negative")
	}
	if h := c.Player.OSCBarHeight; h < 0 {
		return fmt.Errorf("player.osc_bar_height %s must not be negative", strconv.FormatFloat(h, 'f', -1, 64))
	}
	return nil
}
