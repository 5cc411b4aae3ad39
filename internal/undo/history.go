/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo/redo stacks of immutable values.
package undo

import (
	"sync"
	"time"
)

// Entry is one recorded value. Key groups entries that may be coalesced.
type Entry[T any] struct {
	Key   string
	Value T
	TS    time.Time
}

// Config controls depth caps and coalescing behavior.
type Config struct {
	// MaxDepth limits the number of undo entries kept (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces pushes with the same non-empty key captured
	// within the interval: the earlier value is kept so that the whole burst
	// undoes as one step.
	MinInterval time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// History is an undo/redo stack. It is safe for concurrent use.
type History[T any] struct {
	cfg  Config
	mu   sync.Mutex
	undo []Entry[T]
	redo []Entry[T]
}

func New[T any](cfg Config) *History[T] {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &History[T]{cfg: cfg}
}

// Push records v, the state before a change. Any new change invalidates redo.
func (h *History[T]) Push(key string, v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.cfg.Now()
	h.redo = nil
	if n := len(h.undo); n > 0 && key != "" {
		last := &h.undo[n-1]
		if last.Key == key && now.Sub(last.TS) < h.cfg.MinInterval {
			last.TS = now
			return
		}
	}
	h.undo = append(h.undo, Entry[T]{Key: key, Value: v, TS: now})
	if h.cfg.MaxDepth > 0 && len(h.undo) > h.cfg.MaxDepth {
		// drop the oldest extras
		h.undo = append([]Entry[T]{}, h.undo[len(h.undo)-h.cfg.MaxDepth:]...)
	}
}

// Undo pops the last recorded value and remembers current for Redo.
func (h *History[T]) Undo(current T) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n == 0 {
		var zero T
		return zero, false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, Entry[T]{Value: current, TS: h.cfg.Now()})
	return e.Value, true
}

// Redo reverts the last Undo and remembers current for Undo.
func (h *History[T]) Redo(current T) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		var zero T
		return zero, false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, Entry[T]{Value: current, TS: h.cfg.Now()})
	return e.Value, true
}

// Clear drops both stacks.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo = nil, nil
}

// Len returns the current stack sizes for diagnostics.
func (h *History[T]) Len() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}
