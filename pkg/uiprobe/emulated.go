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
	"sync"

	"github.com/walteh/retext/pkg/clipboard"
)

func init() {
	Register("emulated", func(ctx context.Context) (Introspector, error) {
		control := NewEmulatedControl(EmulatedOptions{
			App: AppInfo{Name: "Emulated Host", BundleID: "com.walteh.retext.emulated"},
		})
		return NewEmulatedIntrospector(control, clipboard.NewMemory()), nil
	})
}

// ControlCaps declares which attributes an emulated control exposes. Real
// host controls vary exactly this way: some expose selected-text, some only
// a value plus a range, some neither.
type ControlCaps struct {
	SelectedText      bool
	SetSelectedText   bool
	Value             bool
	SetValue          bool
	SelectionRange    bool
	SetSelectionRange bool
}

// AllCaps returns capabilities for a fully cooperative control
func AllCaps() ControlCaps {
	return ControlCaps{
		SelectedText:      true,
		SetSelectedText:   true,
		Value:             true,
		SetValue:          true,
		SelectionRange:    true,
		SetSelectionRange: true,
	}
}

// EmulatedOptions configures an emulated control
type EmulatedOptions struct {
	App       AppInfo
	Role      string
	Text      string
	Selection Range
	Caps      *ControlCaps // nil means AllCaps
	Bounds    Rect
}

// EmulatedControl is an in-memory text control implementing Element. It backs
// the portable "emulated" backend and every test that exercises the
// extraction and replacement cascades against partial capabilities.
type EmulatedControl struct {
	mu     sync.Mutex
	app    AppInfo
	role   string
	text   []rune
	sel    Range
	caps   ControlCaps
	bounds Rect
}

// NewEmulatedControl creates an emulated control
func NewEmulatedControl(opts EmulatedOptions) *EmulatedControl {
	caps := AllCaps()
	if opts.Caps != nil {
		caps = *opts.Caps
	}
	role := opts.Role
	if role == "" {
		role = "AXTextArea"
	}
	return &EmulatedControl{
		app:    opts.App,
		role:   role,
		text:   []rune(opts.Text),
		sel:    opts.Selection,
		caps:   caps,
		bounds: opts.Bounds,
	}
}

// Role implements Element.Role
func (c *EmulatedControl) Role() string {
	return c.role
}

// App implements Element.App
func (c *EmulatedControl) App() AppInfo {
	return c.app
}

// Value implements Element.Value
func (c *EmulatedControl) Value(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.Value {
		return "", ErrAttributeUnsupported
	}
	return string(c.text), nil
}

// SetValue implements Element.SetValue
func (c *EmulatedControl) SetValue(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.SetValue {
		return ErrAttributeUnsupported
	}
	c.text = []rune(text)
	if c.sel.End() > len(c.text) {
		c.sel = Range{Start: len(c.text), Length: 0}
	}
	return nil
}

// SelectedText implements Element.SelectedText
func (c *EmulatedControl) SelectedText(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.SelectedText {
		return "", ErrAttributeUnsupported
	}
	return string(c.selectedLocked()), nil
}

// SetSelectedText implements Element.SetSelectedText. The selection collapses
// to the end of the inserted text, matching host control behavior.
func (c *EmulatedControl) SetSelectedText(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.SetSelectedText {
		return ErrAttributeUnsupported
	}
	c.spliceLocked(c.sel, []rune(text))
	return nil
}

// SelectionRange implements Element.SelectionRange
func (c *EmulatedControl) SelectionRange(ctx context.Context) (Range, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.SelectionRange {
		return Range{}, ErrAttributeUnsupported
	}
	return c.sel, nil
}

// SetSelectionRange implements Element.SetSelectionRange
func (c *EmulatedControl) SetSelectionRange(ctx context.Context, r Range) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.caps.SetSelectionRange {
		return ErrAttributeUnsupported
	}
	if !r.ValidFor(string(c.text)) {
		return ErrInvalidRange
	}
	c.sel = r
	return nil
}

// Bounds implements Element.Bounds
func (c *EmulatedControl) Bounds(ctx context.Context) (Rect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds, nil
}

// Settable implements Element.Settable
func (c *EmulatedControl) Settable(ctx context.Context, attr Attr) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch attr {
	case AttrValue:
		return c.caps.SetValue
	case AttrSelectedText:
		return c.caps.SetSelectedText
	case AttrSelectionRange:
		return c.caps.SetSelectionRange
	}
	return false
}

// Select moves the selection without capability checks, for test setup
func (c *EmulatedControl) Select(r Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = r
}

// Text returns the full text without capability checks, for test assertions
func (c *EmulatedControl) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.text)
}

func (c *EmulatedControl) selectedLocked() []rune {
	if !c.sel.ValidFor(string(c.text)) {
		return nil
	}
	return c.text[c.sel.Start:c.sel.End()]
}

func (c *EmulatedControl) spliceLocked(r Range, insert []rune) {
	if !r.ValidFor(string(c.text)) {
		r = Range{Start: len(c.text), Length: 0}
	}
	out := make([]rune, 0, len(c.text)-r.Length+len(insert))
	out = append(out, c.text[:r.Start]...)
	out = append(out, insert...)
	out = append(out, c.text[r.End():]...)
	c.text = out
	c.sel = Range{Start: r.Start + len(insert), Length: 0}
}

// EmulatedIntrospector implements Introspector and Synthesizer over emulated
// controls and an in-process clipboard.
type EmulatedIntrospector struct {
	mu      sync.Mutex
	focused *EmulatedControl
	clip    clipboard.Clipboard
	denied  bool
}

// NewEmulatedIntrospector creates an introspector focused on control
func NewEmulatedIntrospector(control *EmulatedControl, clip clipboard.Clipboard) *EmulatedIntrospector {
	return &EmulatedIntrospector{focused: control, clip: clip}
}

// CheckAccess implements Introspector.CheckAccess
func (i *EmulatedIntrospector) CheckAccess(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.denied {
		return ErrPermissionDenied
	}
	return nil
}

// FocusedElement implements Introspector.FocusedElement
func (i *EmulatedIntrospector) FocusedElement(ctx context.Context) (Element, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.denied {
		return nil, ErrPermissionDenied
	}
	if i.focused == nil {
		return nil, ErrNoFocusedElement
	}
	return i.focused, nil
}

// Focus moves focus to control; nil blurs
func (i *EmulatedIntrospector) Focus(control *EmulatedControl) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.focused = control
}

// DenyAccess simulates the user revoking introspection permission
func (i *EmulatedIntrospector) DenyAccess() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.denied = true
}

// GrantAccess simulates the user granting introspection permission
func (i *EmulatedIntrospector) GrantAccess() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.denied = false
}

// Clipboard returns the clipboard keyboard events operate on
func (i *EmulatedIntrospector) Clipboard() clipboard.Clipboard {
	return i.clip
}

// PressCopy implements Synthesizer.PressCopy. With no selection the clipboard
// is left untouched, matching host behavior: copy with nothing selected is a
// no-op, it must not clear or overwrite the clipboard.
func (i *EmulatedIntrospector) PressCopy(ctx context.Context) error {
	i.mu.Lock()
	control := i.focused
	i.mu.Unlock()
	if control == nil {
		return ErrNoFocusedElement
	}
	control.mu.Lock()
	selected := string(control.selectedLocked())
	control.mu.Unlock()
	if selected == "" {
		return nil
	}
	return i.clip.Write(selected)
}

// PressPaste implements Synthesizer.PressPaste, replacing the selection with
// the clipboard contents.
func (i *EmulatedIntrospector) PressPaste(ctx context.Context) error {
	i.mu.Lock()
	control := i.focused
	i.mu.Unlock()
	if control == nil {
		return ErrNoFocusedElement
	}
	text, err := i.clip.Read()
	if err != nil {
		return err
	}
	control.mu.Lock()
	control.spliceLocked(control.sel, []rune(text))
	control.mu.Unlock()
	return nil
}
