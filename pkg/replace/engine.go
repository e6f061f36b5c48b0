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

// Package replace commits new text into whatever text control is currently
// focused, using the most faithful method the control supports: a
// capability-probed strategy cascade, attempted in order, stopping at the
// first success. Failure is detected and reported, never silently swallowed.
package replace

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/retext/pkg/clipboard"
	"github.com/walteh/retext/pkg/uiprobe"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrReplacementFailed indicates every mutation strategy was exhausted
	ErrReplacementFailed = errors.New("all replacement strategies failed")

	// ErrUndoUnavailable indicates the history is empty or the restoration
	// target is gone
	ErrUndoUnavailable = errors.New("undo unavailable")
)

// DefaultRestoreDelay is how long the clipboard strategy waits before
// restoring the prior clipboard contents after a synthesized paste.
const DefaultRestoreDelay = 500 * time.Millisecond

// 🔧 Options configures an Engine
type Options struct {
	// Strategies overrides the default cascade (attribute, range, clipboard)
	Strategies []Strategy

	// History overrides the default bounded history
	History *History

	// Clipboard and Synthesizer feed the default clipboard strategy; leaving
	// either nil drops that strategy from the default cascade
	Clipboard   clipboard.Clipboard
	Synthesizer uiprobe.Synthesizer

	// RestoreDelay overrides DefaultRestoreDelay
	RestoreDelay time.Duration
}

// 🎯 Result reports a committed replacement
type Result struct {
	// Strategy is the name of the strategy that committed
	Strategy string

	// Record is the undo record appended to the history
	Record UndoRecord
}

// ⚙️ Engine runs the replacement cascade and owns the undo history
type Engine struct {
	strategies []Strategy
	history    *History
}

// 🏭 New creates an engine
func New(opts Options) *Engine {
	history := opts.History
	if history == nil {
		history = NewHistory(DefaultHistoryCapacity)
	}
	strategies := opts.Strategies
	if strategies == nil {
		delay := opts.RestoreDelay
		if delay <= 0 {
			delay = DefaultRestoreDelay
		}
		strategies = []Strategy{
			NewAttributeStrategy(),
			NewRangeStrategy(),
		}
		if opts.Clipboard != nil && opts.Synthesizer != nil {
			strategies = append(strategies, NewClipboardStrategy(opts.Clipboard, opts.Synthesizer, delay))
		}
	}
	return &Engine{strategies: strategies, history: history}
}

// Replace commits req into el through the cascade. Exactly one undo record is
// appended on success; on exhaustion no record is appended, no partial
// mutation remains, and ErrReplacementFailed is returned once.
func (e *Engine) Replace(ctx context.Context, el uiprobe.Element, req Request) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if !req.Mode.Valid() {
		return nil, errors.Errorf("invalid replacement mode %q", req.Mode)
	}

	for _, strategy := range e.strategies {
		if !strategy.CanApply(ctx, el, req) {
			logger.Debug().Str("strategy", strategy.Name()).Msg("strategy not applicable")
			continue
		}

		outcome, err := strategy.Apply(ctx, el, req)
		if err != nil {
			// invalid-range and friends are internal signals: abort this
			// strategy and fall through to the next.
			logger.Debug().Err(err).Str("strategy", strategy.Name()).Msg("strategy failed")
			continue
		}

		rec := UndoRecord{
			Original:    outcome.Replaced,
			Replacement: outcome.Inserted,
			Start:       outcome.Start,
			All:         outcome.All,
			CapturedAt:  time.Now(),
			Target: TargetDescriptor{
				App:  el.App(),
				Role: el.Role(),
			},
		}
		e.history.Push(rec)

		logger.Info().
			Str("strategy", strategy.Name()).
			Str("mode", string(req.Mode)).
			Str("app", el.App().Name).
			Msg("replacement committed")
		return &Result{Strategy: strategy.Name(), Record: rec}, nil
	}

	return nil, errors.Errorf("committing %q replacement: %w", req.Mode, ErrReplacementFailed)
}

// Undo pops the most recent record and attempts to write its original text
// back into el — the currently focused element, not necessarily the original
// target; if the host state has changed this is best-effort. A failed
// restoration re-queues the popped record so history is not silently lost.
func (e *Engine) Undo(ctx context.Context, el uiprobe.Element) error {
	rec, ok := e.history.Pop()
	if !ok {
		return errors.Errorf("empty history: %w", ErrUndoUnavailable)
	}

	if err := restore(ctx, el, rec); err != nil {
		e.history.Push(rec)
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("app", rec.Target.App.Name).
		Msg("replacement undone")
	return nil
}

// CanUndo reports whether an undo record is available
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// HistorySize returns the number of stored undo records
func (e *Engine) HistorySize() int {
	return e.history.Len()
}

// ClearHistory empties the undo history (session boundaries only)
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// restore writes rec.Original back over the committed replacement
func restore(ctx context.Context, el uiprobe.Element, rec UndoRecord) error {
	if !el.Settable(ctx, uiprobe.AttrValue) {
		return errors.Errorf("focused element rejects value writes: %w", ErrUndoUnavailable)
	}
	value, err := el.Value(ctx)
	if err != nil {
		return errors.Errorf("reading value for undo: %w", ErrUndoUnavailable)
	}

	if rec.All {
		if !strings.Contains(value, rec.Replacement) {
			return errors.Errorf("replaced text no longer present: %w", ErrUndoUnavailable)
		}
		newValue := strings.ReplaceAll(value, rec.Replacement, rec.Original)
		if err := el.SetValue(ctx, newValue); err != nil {
			return errors.Errorf("writing restored value: %w", err)
		}
		return nil
	}

	runes := []rune(value)
	repl := []rune(rec.Replacement)

	start := rec.Start
	if start < 0 || start+len(repl) > len(runes) || string(runes[start:start+len(repl)]) != rec.Replacement {
		// Offset stale or never known: fall back to searching for the
		// replacement text.
		idx := strings.Index(value, rec.Replacement)
		if rec.Replacement == "" || idx < 0 {
			return errors.Errorf("replaced text no longer present: %w", ErrUndoUnavailable)
		}
		start = len([]rune(value[:idx]))
	}

	newValue := string(runes[:start]) + rec.Original + string(runes[start+len(repl):])
	if err := el.SetValue(ctx, newValue); err != nil {
		return errors.Errorf("writing restored value: %w", err)
	}
	_ = el.SetSelectionRange(ctx, uiprobe.Range{Start: start + len([]rune(rec.Original)), Length: 0})
	return nil
}
