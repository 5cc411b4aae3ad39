/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package notify posts geometry change events to an opt-in HTTP endpoint,
// for window managers and scripts that follow the player window.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
	"pwinlayout/internal/store"
	"pwinlayout/internal/version"
)

// Config holds the endpoint settings. An empty URL disables the client.
type Config struct {
	URL     string
	Timeout time.Duration
	Debug   bool
}

const (
	defaultTimeout = 1500 * time.Millisecond
	queueSize      = 64
)

// Client is an async sender. Events are dropped when the queue is full or
// the endpoint fails; sending never blocks the caller.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	q      chan event
	once   sync.Once
	closed chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// queued or being sent
	pending atomic.Int64
}

type event struct {
	Name     string          `json:"event"`
	Slot     string          `json:"slot,omitempty"`
	TS       string          `json:"ts"`
	Version  string          `json:"version"`
	OS       string          `json:"os"`
	Arch     string          `json:"arch"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
	Props    map[string]any  `json:"props,omitempty"`
}

// New starts a client. A disabled client still accepts events and drops them.
// Cancelling ctx aborts the request in flight; Close does the same.
func New(ctx context.Context, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		log:    applog.WithComponent("notify"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan event, queueSize),
		closed: make(chan struct{}),
	}
	if c.Enabled() {
		c.wg.Add(1)
		go c.loop()
	}
	return c
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.URL != "" }

// Geometry queues a geometry change of the window in slot.
func (c *Client) Geometry(slot string, g pwin.Geometry) {
	if !c.Enabled() {
		return
	}
	data, err := store.Encode(g)
	if err != nil {
		c.log.Warn("encode geometry failed", slog.Any("err", err))
		return
	}
	c.enqueue(c.newEvent("geometry", slot, data, nil))
}

// Event queues a named event with small non-identifying properties.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	c.enqueue(c.newEvent(name, "", nil, props))
}

// OnChange adapts the client to window.Options.OnChange for slot.
func (c *Client) OnChange(slot string) func(pwin.Geometry) {
	return func(g pwin.Geometry) { c.Geometry(slot, g) }
}

func (c *Client) newEvent(name, slot string, geo json.RawMessage, props map[string]any) event {
	return event{
		Name:     name,
		Slot:     slot,
		TS:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:  version.String(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Geometry: geo,
		Props:    props,
	}
}

func (c *Client) enqueue(e event) {
	select {
	case <-c.closed:
		return
	case <-c.ctx.Done():
		return
	default:
	}
	c.pending.Add(1)
	select {
	case c.q <- e:
	default:
		c.pending.Add(-1)
		if c.cfg.Debug {
			c.log.Debug("queue full, event dropped", slog.String("event", e.Name))
		}
	}
}

// Flush waits until queued events were sent or ctx is done.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	for c.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Close stops the sender. Events still queued are dropped.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		close(c.closed)
		c.cancel()
	})
	c.wg.Wait()
}

func (c *Client) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.closed:
			return
		case <-c.ctx.Done():
			return
		case e := <-c.q:
			c.send(e)
			c.pending.Add(-1)
		}
	}
}

func (c *Client) send(e event) {
	buf, err := json.Marshal(e)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.Debug {
			c.log.Debug("notify send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.log.Warn("notify endpoint rejected event", slog.String("event", e.Name), slog.Int("status", resp.StatusCode))
		return
	}
	if c.cfg.Debug {
		c.log.Debug("notify event sent", slog.String("event", e.Name))
	}
}
