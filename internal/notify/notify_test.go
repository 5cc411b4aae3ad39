/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pwinlayout/internal/geom"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/store"
	"pwinlayout/internal/video"
)

type recorder struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (r *recorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		r.mu.Lock()
		r.bodies = append(r.bodies, b)
		r.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (r *recorder) all() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.bodies...)
}

func flush(t *testing.T, c *Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.Flush(ctx)
}

// hangingServer answers no request until the client goes away or the test
// ends. The body is drained first so that the server notices a dropped
// connection.
func hangingServer(t *testing.T) (<-chan struct{}, *httptest.Server) {
	t.Helper()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		once.Do(func() { close(started) })
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return started, srv
}

func sampleGeometry() pwin.Geometry {
	return pwin.New(pwin.Params{
		WindowFrame: geom.R(100, 100, 960, 540),
		ScreenID:    "main",
		Mode:        pwin.WindowedNormal,
		Fit:         pwin.StayInsideScreen,
		Video:       video.New(1920, 1080),
	})
}

func TestGeometryEventIsPosted(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	c := New(context.Background(), Config{URL: srv.URL, Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}
	g := sampleGeometry()
	c.OnChange("main")(g)
	flush(t, c)

	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("posted %d events, want 1", len(bodies))
	}
	var m struct {
		Event    string          `json:"event"`
		Slot     string          `json:"slot"`
		TS       string          `json:"ts"`
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(bodies[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m.Event != "geometry" || m.Slot != "main" || m.TS == "" {
		t.Fatalf("event = %+v", m)
	}
	got, err := store.Decode(m.Geometry)
	if err != nil {
		t.Fatalf("decode geometry: %v", err)
	}
	if got.WindowFrame != g.WindowFrame {
		t.Fatalf("WindowFrame = %v, want %v", got.WindowFrame, g.WindowFrame)
	}
}

func TestNamedEvent(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusNoContent))
	defer srv.Close()

	c := New(context.Background(), Config{URL: srv.URL})
	defer c.Close()
	c.Event("", nil)
	c.Event("started", map[string]any{"screens": 2})
	flush(t, c)

	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("posted %d events, want 1", len(bodies))
	}
	var m map[string]any
	if err := json.Unmarshal(bodies[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["event"] != "started" {
		t.Fatalf("event = %v", m["event"])
	}
	if _, ok := m["geometry"]; ok {
		t.Fatalf("named event carries a geometry")
	}
}

func TestDisabledClientDropsEvents(t *testing.T) {
	c := New(context.Background(), Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("client without URL is enabled")
	}
	c.Geometry("main", sampleGeometry())
	c.Event("started", nil)
	flush(t, c)
	if n := c.pending.Load(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}

	var nilClient *Client
	nilClient.Geometry("main", sampleGeometry())
	nilClient.Close()
}

func TestFailingEndpointDoesNotBlock(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusInternalServerError))
	defer srv.Close()

	c := New(context.Background(), Config{URL: srv.URL})
	for i := 0; i < 3; i++ {
		c.Event("tick", nil)
	}
	flush(t, c)
	c.Close()
	if n := len(rec.all()); n != 3 {
		t.Fatalf("posted %d events, want 3", n)
	}
	// events after Close are dropped
	c.Event("late", nil)
	if n := c.pending.Load(); n != 0 {
		t.Fatalf("pending after close = %d, want 0", n)
	}
}

func TestCloseAbortsRequestInFlight(t *testing.T) {
	started, srv := hangingServer(t)

	c := New(context.Background(), Config{URL: srv.URL, Timeout: 30 * time.Second})
	c.Event("resize", nil)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("request did not reach the endpoint")
	}

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Close blocked on the request in flight")
	}
}

func TestParentContextCancelsSender(t *testing.T) {
	started, srv := hangingServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx, Config{URL: srv.URL, Timeout: 30 * time.Second})
	defer c.Close()
	c.Event("resize", nil)
	<-started
	cancel()

	fctx, fcancel := context.WithTimeout(context.Background(), time.Second)
	defer fcancel()
	c.Flush(fctx)
	if fctx.Err() != nil {
		t.Fatalf("Flush timed out, pending = %d, want 0", c.pending.Load())
	}
}
