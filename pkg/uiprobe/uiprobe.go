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

package uiprobe

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoFocusedElement indicates nothing editable is currently focused
	ErrNoFocusedElement = errors.New("no focused element")

	// ErrPermissionDenied indicates introspection access has not been granted
	ErrPermissionDenied = errors.New("introspection permission denied")

	// ErrInvalidRange indicates a selection range no longer matches the element's text
	ErrInvalidRange = errors.New("selection range out of bounds")

	// ErrAttributeUnsupported indicates the element does not expose the attribute
	ErrAttributeUnsupported = errors.New("attribute unsupported")
)

// 🔑 Attr identifies an element attribute that may be read or written
type Attr string

const (
	AttrValue          Attr = "value"
	AttrSelectedText   Attr = "selected-text"
	AttrSelectionRange Attr = "selection-range"
)

// 📐 Range is a selection range in rune offsets within an element's text value
type Range struct {
	Start  int
	Length int
}

// End returns the exclusive end offset of the range
func (r Range) End() int {
	return r.Start + r.Length
}

// ValidFor reports whether the range fits within text. Ranges read from a
// host control can be stale if the document changed since the read.
func (r Range) ValidFor(text string) bool {
	if r.Start < 0 || r.Length < 0 {
		return false
	}
	return r.End() <= len([]rune(text))
}

// 🖼️ Rect is a screen-space bounding rectangle, used only to position preview UI
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// 📦 AppInfo identifies the foreground application owning a focused element
type AppInfo struct {
	Name     string // Human-readable application name
	BundleID string // Stable bundle/process identifier
}

// 🔌 Element is one focused text control in a foreground application. Hosts
// differ wildly in which attributes they expose; every accessor may return
// ErrAttributeUnsupported and callers must probe with Settable before writing.
type Element interface {
	// Role returns the control's role (e.g. text area, text field)
	Role() string

	// App returns the owning application's identity
	App() AppInfo

	// Value returns the control's full text value
	Value(ctx context.Context) (string, error)

	// SetValue replaces the control's full text value
	SetValue(ctx context.Context, text string) error

	// SelectedText returns the currently selected text
	SelectedText(ctx context.Context) (string, error)

	// SetSelectedText replaces the current selection with text
	SetSelectedText(ctx context.Context, text string) error

	// SelectionRange returns the current selection range
	SelectionRange(ctx context.Context) (Range, error)

	// SetSelectionRange moves the selection
	SetSelectionRange(ctx context.Context, r Range) error

	// Bounds returns the selection's screen-space bounding rectangle
	Bounds(ctx context.Context) (Rect, error)

	// Settable reports whether the attribute accepts writes on this control
	Settable(ctx context.Context, attr Attr) bool
}

// 🔍 Introspector exposes the platform UI-introspection interface
type Introspector interface {
	// CheckAccess verifies introspection access, returning ErrPermissionDenied
	// when the user has not granted it
	CheckAccess(ctx context.Context) error

	// FocusedElement returns the focused text control of the foreground
	// application, or ErrNoFocusedElement
	FocusedElement(ctx context.Context) (Element, error)
}

// ⌨️ Synthesizer posts synthetic keyboard events to the foreground application
type Synthesizer interface {
	// PressCopy synthesizes the platform copy shortcut
	PressCopy(ctx context.Context) error

	// PressPaste synthesizes the platform paste shortcut
	PressPaste(ctx context.Context) error
}

// 🏭 Factory creates a new introspection backend
type Factory func(ctx context.Context) (Introspector, error)

var (
	// 🗺️ backends is a map of backend names to factories
	backends = make(map[string]Factory)
)

// 📝 Register registers an introspection backend factory. Platform backends
// register themselves from build-tagged files; the emulated backend is always
// available.
func Register(name string, factory Factory) {
	backends[name] = factory
}

// 🎯 Get returns a backend factory by name, or nil if none is registered
func Get(name string) Factory {
	return backends[name]
}
