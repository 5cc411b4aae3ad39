/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitJSONToFileCarriesStaticAndContextAttrs(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "pwl.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { Init(Options{Level: "info", Console: os.Stderr}) })

	l := WithOperation(WithComponent("pwin"), "scale_viewport")
	l.Info("clamped viewport", slog.Float64("w", 640))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log %q: %v", last, err)
	}
	if m["app"] != "pwinlayout" {
		t.Fatalf("app = %v, want pwinlayout", m["app"])
	}
	if v, _ := m["ver"].(string); v == "" {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "pwin" || m["op"] != "scale_viewport" {
		t.Fatalf("component/op = %v/%v", m["component"], m["op"])
	}
	if !strings.Contains(console.String(), "clamped viewport") {
		t.Fatalf("console output missing record: %q", console.String())
	}
}

func TestSetLevelFiltersAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "info", Console: os.Stderr}) })

	L().Debug("hidden")
	SetLevel("debug")
	L().Debug("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PWL_LOG_LEVEL", "warn")
	t.Setenv("PWL_LOG_FORMAT", "json")
	t.Setenv("PWL_LOG_SOURCE", "true")
	t.Setenv("PWL_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("PWL_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback = %q", v)
	}
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &buf}
	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")

	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true),
		slog.Group("size", slog.Float64("w", 640), slog.Float64("h", 360)))
	if err := h2.Handle(nil, r); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR boom", "grp.k=v", "grp.n=42", "grp.pi=3.14", "grp.ok=true", "grp.size={w=640 h=360}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "WARNING": slog.LevelWarn, "error": slog.LevelError, "bogus": slog.LevelInfo}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleTagsComponentAndOperation(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "info", Console: os.Stderr}) })

	WithOperation(WithComponent("window"), "enter_mode").Debug("mode change", slog.String("to", "musicMode"))
	out := buf.String()
	for _, want := range []string{"DBG [window/enter_mode] mode change", "to=musicMode"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component repeated as attribute: %q", out)
	}
}
