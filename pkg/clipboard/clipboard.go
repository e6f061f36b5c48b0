// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clipboard wraps the system clipboard behind an interface so the
// selection monitor and replacement engine can treat it as a shared,
// externally-owned resource: every transient use must save and restore the
// prior contents.
package clipboard

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Clipboard is string-level access to a clipboard
type Clipboard interface {
	// Read returns the current clipboard contents
	Read() (string, error)

	// Write replaces the clipboard contents
	Write(text string) error
}

// 🖥️ System is the real system clipboard
type System struct{}

// 🏭 NewSystem creates a system clipboard
func NewSystem() *System {
	return &System{}
}

// Read implements Clipboard.Read
func (s *System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errors.Errorf("reading system clipboard: %w", err)
	}
	return text, nil
}

// Write implements Clipboard.Write
func (s *System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Errorf("writing system clipboard: %w", err)
	}
	return nil
}

// 🧪 Memory is an in-process clipboard used by the emulated backend and tests
type Memory struct {
	mu   sync.Mutex
	text string
}

// 🏭 NewMemory creates an in-process clipboard
func NewMemory() *Memory {
	return &Memory{}
}

// Read implements Clipboard.Read
func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Write implements Clipboard.Write
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// 💾 Restorer captures clipboard contents and puts them back later, either
// synchronously or after a delay (a synthesized paste needs time to be
// consumed by the host application before the clipboard is restored).
type Restorer struct {
	mu    sync.Mutex
	clip  Clipboard
	saved string
	ok    bool
}

// 🏭 Save captures the current clipboard contents
func Save(clip Clipboard) (*Restorer, error) {
	text, err := clip.Read()
	if err != nil {
		return nil, errors.Errorf("saving clipboard: %w", err)
	}
	return &Restorer{clip: clip, saved: text, ok: true}, nil
}

// Restore writes the saved contents back immediately
func (r *Restorer) Restore() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ok {
		return nil
	}
	r.ok = false
	if err := r.clip.Write(r.saved); err != nil {
		return errors.Errorf("restoring clipboard: %w", err)
	}
	return nil
}

// RestoreAfter schedules a restore once delay has elapsed. A zero delay
// restores on the next timer tick, which tests rely on.
func (r *Restorer) RestoreAfter(delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() {
		_ = r.Restore()
	})
}

// Saved returns the captured contents
func (r *Restorer) Saved() string {
	return r.saved
}
