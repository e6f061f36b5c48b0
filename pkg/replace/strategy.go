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

package replace

import (
	"context"
	"strings"
	"time"

	"github.com/walteh/retext/pkg/clipboard"
	"github.com/walteh/retext/pkg/uiprobe"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Mode selects how new text is committed relative to the selection
type Mode string

const (
	ModeReplaceSelection Mode = "replace-selection"
	ModeInsertBefore     Mode = "insert-before"
	ModeInsertAfter      Mode = "insert-after"
	ModeReplaceParagraph Mode = "replace-paragraph"
	ModeReplaceAll       Mode = "replace-all-occurrences"
)

// Valid reports whether the mode is a member of the closed enumeration
func (m Mode) Valid() bool {
	switch m {
	case ModeReplaceSelection, ModeInsertBefore, ModeInsertAfter,
		ModeReplaceParagraph, ModeReplaceAll:
		return true
	}
	return false
}

// 📨 Request describes one replacement operation
type Request struct {
	// Original is the selected text the operation is based on
	Original string

	// Replacement is the text to commit
	Replacement string

	// Mode selects where Replacement lands
	Mode Mode
}

// 📋 Outcome reports what a successful strategy actually changed
type Outcome struct {
	// Replaced is the text the committed span overwrote ("" for inserts)
	Replaced string

	// Inserted is the text written into the control
	Inserted string

	// Start is the rune offset of Inserted in the new value, -1 if unknown
	Start int

	// All marks a replace-all-occurrences commit
	All bool
}

// 🔌 Strategy is one method of committing text into a host control. The
// cascade probes CanApply before attempting Apply; a strategy either fully
// succeeds or makes no change before the next is attempted.
type Strategy interface {
	// Name identifies the strategy in logs and results
	Name() string

	// CanApply reports whether the strategy can serve this element and mode
	CanApply(ctx context.Context, el uiprobe.Element, req Request) bool

	// Apply commits the replacement
	Apply(ctx context.Context, el uiprobe.Element, req Request) (*Outcome, error)
}

// attributeStrategy sets the selected-text attribute directly. Fastest, and
// preserves the host application's own undo stack.
type attributeStrategy struct{}

// NewAttributeStrategy creates the direct attribute-set strategy
func NewAttributeStrategy() Strategy {
	return &attributeStrategy{}
}

func (s *attributeStrategy) Name() string {
	return "attribute"
}

func (s *attributeStrategy) CanApply(ctx context.Context, el uiprobe.Element, req Request) bool {
	// Only a pure selection replace maps onto the attribute; every other
	// mode needs range/value arithmetic.
	return req.Mode == ModeReplaceSelection && el.Settable(ctx, uiprobe.AttrSelectedText)
}

func (s *attributeStrategy) Apply(ctx context.Context, el uiprobe.Element, req Request) (*Outcome, error) {
	start := -1
	if r, err := el.SelectionRange(ctx); err == nil {
		start = r.Start
	}
	if err := el.SetSelectedText(ctx, req.Replacement); err != nil {
		return nil, errors.Errorf("setting selected-text attribute: %w", err)
	}
	return &Outcome{Replaced: req.Original, Inserted: req.Replacement, Start: start}, nil
}

// rangeStrategy reads the full value and selection range, validates the range
// against current bounds, splices, writes the value back, and repositions the
// selection to the end of the inserted text so subsequent typing continues
// naturally. All modes funnel through this strategy's primitives.
type rangeStrategy struct{}

// NewRangeStrategy creates the range-based replacement strategy
func NewRangeStrategy() Strategy {
	return &rangeStrategy{}
}

func (s *rangeStrategy) Name() string {
	return "range"
}

func (s *rangeStrategy) CanApply(ctx context.Context, el uiprobe.Element, req Request) bool {
	return el.Settable(ctx, uiprobe.AttrValue)
}

func (s *rangeStrategy) Apply(ctx context.Context, el uiprobe.Element, req Request) (*Outcome, error) {
	value, err := el.Value(ctx)
	if err != nil {
		return nil, errors.Errorf("reading value: %w", err)
	}

	outcome, newValue, err := spliceForMode(ctx, el, value, req)
	if err != nil {
		return nil, err
	}

	if err := el.SetValue(ctx, newValue); err != nil {
		return nil, errors.Errorf("writing value: %w", err)
	}

	// Reposition best-effort; controls without a settable range still count
	// as committed.
	if outcome.Start >= 0 {
		end := outcome.Start + len([]rune(outcome.Inserted))
		_ = el.SetSelectionRange(ctx, uiprobe.Range{Start: end, Length: 0})
	}
	return outcome, nil
}

// spliceForMode computes the new full value for the request without mutating
// the element, so a failure here leaves no partial change behind.
func spliceForMode(ctx context.Context, el uiprobe.Element, value string, req Request) (*Outcome, string, error) {
	runes := []rune(value)

	if req.Mode == ModeReplaceAll {
		if req.Original == "" {
			return nil, "", errors.Errorf("replace-all requires original text")
		}
		count := strings.Count(value, req.Original)
		if count == 0 {
			return nil, "", errors.Errorf("original text not found in control value")
		}
		newValue := strings.ReplaceAll(value, req.Original, req.Replacement)
		return &Outcome{Replaced: req.Original, Inserted: req.Replacement, Start: -1, All: true}, newValue, nil
	}

	r, err := el.SelectionRange(ctx)
	if err != nil {
		return nil, "", errors.Errorf("reading selection range: %w", err)
	}
	if !r.ValidFor(value) {
		// Stale range from a just-changed document: abort this strategy,
		// the cascade falls through.
		return nil, "", errors.Errorf("validating selection range: %w", uiprobe.ErrInvalidRange)
	}

	var target uiprobe.Range
	switch req.Mode {
	case ModeReplaceSelection:
		target = r
	case ModeInsertBefore:
		target = uiprobe.Range{Start: r.Start, Length: 0}
	case ModeInsertAfter:
		target = uiprobe.Range{Start: r.End(), Length: 0}
	case ModeReplaceParagraph:
		target = paragraphRange(runes, r)
	default:
		return nil, "", errors.Errorf("unsupported mode %q", req.Mode)
	}

	replaced := string(runes[target.Start:target.End()])
	newValue := string(runes[:target.Start]) + req.Replacement + string(runes[target.End():])
	return &Outcome{Replaced: replaced, Inserted: req.Replacement, Start: target.Start}, newValue, nil
}

// paragraphRange expands r outward to the enclosing paragraph: the span
// between the nearest blank-line pairs (or the text's ends).
func paragraphRange(runes []rune, r uiprobe.Range) uiprobe.Range {
	text := string(runes)

	start := 0
	if idx := strings.LastIndex(string(runes[:r.Start]), "\n\n"); idx >= 0 {
		start = len([]rune(text[:idx])) + 2
	}

	end := len(runes)
	if idx := strings.Index(string(runes[r.End():]), "\n\n"); idx >= 0 {
		end = r.End() + len([]rune(string(runes[r.End():])[:idx]))
	}

	return uiprobe.Range{Start: start, Length: end - start}
}

// clipboardStrategy pastes through the clipboard as a last resort for
// controls that refuse attribute mutation entirely. The prior clipboard
// contents are restored on a schedule, not synchronously, to give the paste
// event time to be consumed by the host application.
type clipboardStrategy struct {
	clip         clipboard.Clipboard
	synth        uiprobe.Synthesizer
	restoreDelay time.Duration
}

// NewClipboardStrategy creates the clipboard-simulated paste strategy
func NewClipboardStrategy(clip clipboard.Clipboard, synth uiprobe.Synthesizer, restoreDelay time.Duration) Strategy {
	return &clipboardStrategy{clip: clip, synth: synth, restoreDelay: restoreDelay}
}

func (s *clipboardStrategy) Name() string {
	return "clipboard"
}

func (s *clipboardStrategy) CanApply(ctx context.Context, el uiprobe.Element, req Request) bool {
	return req.Mode == ModeReplaceSelection && s.clip != nil && s.synth != nil
}

func (s *clipboardStrategy) Apply(ctx context.Context, el uiprobe.Element, req Request) (*Outcome, error) {
	restorer, err := clipboard.Save(s.clip)
	if err != nil {
		return nil, errors.Errorf("saving clipboard before paste: %w", err)
	}

	if err := s.clip.Write(req.Replacement); err != nil {
		_ = restorer.Restore()
		return nil, errors.Errorf("staging replacement on clipboard: %w", err)
	}
	if err := s.synth.PressPaste(ctx); err != nil {
		_ = restorer.Restore()
		return nil, errors.Errorf("synthesizing paste: %w", err)
	}

	restorer.RestoreAfter(s.restoreDelay)
	return &Outcome{Replaced: req.Original, Inserted: req.Replacement, Start: -1}, nil
}
