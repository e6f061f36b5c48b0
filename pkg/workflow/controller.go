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

// Package workflow drives one user-initiated operation through the pipeline:
// monitor event, transformation request, diff preview, commit. No operation
// spans more than one selection, and only one provider request is outstanding
// at a time.
package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/retext/pkg/diff"
	"github.com/walteh/retext/pkg/provider"
	"github.com/walteh/retext/pkg/replace"
	"github.com/walteh/retext/pkg/selection"
	"github.com/walteh/retext/pkg/uiprobe"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ State is the controller's position in the operation pipeline
type State int

const (
	StateIdle State = iota
	StateAwaitingChoice
	StateProcessing
	StatePreviewing
	StateCommitting
)

// String returns the state's name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingChoice:
		return "awaiting-choice"
	case StateProcessing:
		return "processing"
	case StatePreviewing:
		return "previewing"
	case StateCommitting:
		return "committing"
	}
	return "unknown"
}

// 🪝 Hooks notify the presentation layer. All hooks are optional and are
// invoked without the controller lock held.
type Hooks struct {
	OnState              func(State)
	OnSelection          func(*selection.Snapshot)
	OnCleared            func()
	OnPreview            func([]diff.Segment)
	OnCommitted          func(*replace.Result)
	OnError              func(err error, message string)
	OnPermissionRequired func()
}

// 🔧 Options configures a Controller
type Options struct {
	// Events is the selection monitor's event stream (required for Run)
	Events <-chan selection.Event

	// Provider is the transformation provider (required)
	Provider provider.Provider

	// Engine is the replacement engine (required)
	Engine *replace.Engine

	// Introspector resolves the focused element at commit time (required)
	Introspector uiprobe.Introspector

	// Hooks notify the presentation layer
	Hooks Hooks
}

// 🎮 Controller is the four-state workflow machine
type Controller struct {
	events <-chan selection.Event
	prov   provider.Provider
	engine *replace.Engine
	intro  uiprobe.Introspector
	hooks  Hooks

	mu         sync.Mutex
	state      State
	snapshot   *selection.Snapshot
	candidate  string
	segments   []diff.Segment
	generation uint64
	cancel     context.CancelFunc
}

// 🏭 New creates a controller
func New(opts Options) (*Controller, error) {
	if opts.Provider == nil {
		return nil, errors.Errorf("provider is required")
	}
	if opts.Engine == nil {
		return nil, errors.Errorf("engine is required")
	}
	if opts.Introspector == nil {
		return nil, errors.Errorf("introspector is required")
	}
	return &Controller{
		events: opts.Events,
		prov:   opts.Provider,
		engine: opts.Engine,
		intro:  opts.Introspector,
		hooks:  opts.Hooks,
		state:  StateIdle,
	}, nil
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Engine returns the replacement engine (for undo queries from the
// presentation layer; the undo history itself stays engine-owned)
func (c *Controller) Engine() *replace.Engine {
	return c.engine
}

// Run pumps monitor events until ctx is cancelled or the stream closes.
// Events are handled in detection order and never reordered.
func (c *Controller) Run(ctx context.Context) error {
	if c.events == nil {
		return errors.Errorf("no event stream configured")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			c.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent feeds one monitor event into the state machine. A new
// selection-changed event arriving while not idle cancels the in-flight
// operation: no operation spans more than one selection.
func (c *Controller) HandleEvent(ctx context.Context, ev selection.Event) {
	switch ev.Kind {
	case selection.EventChanged:
		c.mu.Lock()
		c.cancelInFlightLocked()
		c.snapshot = ev.Snapshot
		c.candidate = ""
		c.segments = nil
		c.state = StateAwaitingChoice
		c.mu.Unlock()

		c.notifyState(StateAwaitingChoice)
		if c.hooks.OnSelection != nil {
			c.hooks.OnSelection(ev.Snapshot)
		}

	case selection.EventCleared:
		c.mu.Lock()
		wasIdle := c.state == StateIdle
		c.cancelInFlightLocked()
		c.resetLocked()
		c.mu.Unlock()

		if !wasIdle {
			c.notifyState(StateIdle)
		}
		if c.hooks.OnCleared != nil {
			c.hooks.OnCleared()
		}

	case selection.EventPermissionRequired:
		if c.hooks.OnPermissionRequired != nil {
			c.hooks.OnPermissionRequired()
		}
		c.reportError(ctx, uiprobe.ErrPermissionDenied)
	}
}

// Choose starts the transformation for the current selection. The provider
// call runs asynchronously so the polling loop stays responsive; the
// controller moves to processing and can still be cancelled.
func (c *Controller) Choose(ctx context.Context, operation, instructions string) error {
	c.mu.Lock()
	if c.state != StateAwaitingChoice || c.snapshot == nil {
		state := c.state
		c.mu.Unlock()
		return errors.Errorf("cannot choose operation in state %q", state)
	}

	req := provider.Request{
		Operation:    operation,
		Text:         c.snapshot.Text,
		Instructions: instructions,
	}
	c.state = StateProcessing
	gen := c.generation
	provCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.notifyState(StateProcessing)

	go func() {
		resp, err := c.prov.Transform(provCtx, req)
		cancel()
		c.completeProcessing(ctx, gen, resp, err)
	}()
	return nil
}

// completeProcessing receives the provider response. Responses arriving after
// cancellation carry a stale generation and are discarded.
func (c *Controller) completeProcessing(ctx context.Context, gen uint64, resp *provider.Response, err error) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateProcessing {
		c.mu.Unlock()
		zerolog.Ctx(ctx).Debug().Msg("discarding stale provider response")
		return
	}

	if err != nil {
		c.resetLocked()
		c.mu.Unlock()
		c.notifyState(StateIdle)
		c.reportError(ctx, errors.Errorf("transforming text: %w", err))
		return
	}

	original := c.snapshot.Text
	c.candidate = resp.Text
	c.segments = computeSegments(original, resp.Text)
	c.state = StatePreviewing
	segments := c.segments
	c.mu.Unlock()

	c.notifyState(StatePreviewing)
	if c.hooks.OnPreview != nil {
		c.hooks.OnPreview(segments)
	}
}

// Accept commits the previewed candidate through the replacement engine
func (c *Controller) Accept(ctx context.Context, mode replace.Mode) error {
	if mode == "" {
		mode = replace.ModeReplaceSelection
	}

	c.mu.Lock()
	if c.state != StatePreviewing {
		state := c.state
		c.mu.Unlock()
		return errors.Errorf("cannot accept in state %q", state)
	}
	req := replace.Request{
		Original:    c.snapshot.Text,
		Replacement: c.candidate,
		Mode:        mode,
	}
	c.state = StateCommitting
	gen := c.generation
	c.mu.Unlock()

	c.notifyState(StateCommitting)

	result, err := c.commit(ctx, req)

	// A selection-changed event during the commit bumps the generation and
	// takes over the machine; resetting here would silently discard that new
	// selection, and the monitor's dedupe would never re-emit it.
	c.mu.Lock()
	superseded := gen != c.generation
	if !superseded {
		c.resetLocked()
	}
	c.mu.Unlock()
	if !superseded {
		c.notifyState(StateIdle)
	}

	if err != nil {
		c.reportError(ctx, err)
		return err
	}
	if c.hooks.OnCommitted != nil {
		c.hooks.OnCommitted(result)
	}
	return nil
}

func (c *Controller) commit(ctx context.Context, req replace.Request) (*replace.Result, error) {
	el, err := c.intro.FocusedElement(ctx)
	if err != nil {
		return nil, errors.Errorf("resolving commit target: %w", err)
	}
	result, err := c.engine.Replace(ctx, el, req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject abandons the operation from any post-awaiting state, discarding all
// intermediate state.
func (c *Controller) Reject() {
	c.mu.Lock()
	wasIdle := c.state == StateIdle
	c.cancelInFlightLocked()
	c.resetLocked()
	c.mu.Unlock()

	if !wasIdle {
		c.notifyState(StateIdle)
	}
}

// cancelInFlightLocked stops waiting on any pending provider call. The
// cancellation is cooperative: the provider's own processing is not aborted,
// its eventual response is discarded by the generation check.
func (c *Controller) cancelInFlightLocked() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) resetLocked() {
	c.generation++
	c.state = StateIdle
	c.snapshot = nil
	c.candidate = ""
	c.segments = nil
}

func (c *Controller) notifyState(s State) {
	if c.hooks.OnState != nil {
		c.hooks.OnState(s)
	}
}

// reportError maps an error to a human-readable message and surfaces it once
func (c *Controller) reportError(ctx context.Context, err error) {
	message := humanMessage(err)
	zerolog.Ctx(ctx).Error().Err(err).Msg(message)
	if c.hooks.OnError != nil {
		c.hooks.OnError(err, message)
	}
}

// humanMessage translates error kinds into user-visible text
func humanMessage(err error) string {
	switch {
	case errors.Is(err, uiprobe.ErrPermissionDenied):
		return "Accessibility access is required. Grant it in system settings, then try again."
	case errors.Is(err, uiprobe.ErrNoFocusedElement):
		return "No editable text control is focused. Click into a text field and try again."
	case errors.Is(err, replace.ErrReplacementFailed):
		return "This application does not allow its text to be replaced."
	case errors.Is(err, replace.ErrUndoUnavailable):
		return "Nothing to undo."
	default:
		return "The transformation failed: " + err.Error()
	}
}

// computeSegments picks line diffing for multi-line text and the word-level
// inline diff for short single-line strings.
func computeSegments(original, candidate string) []diff.Segment {
	if strings.Contains(original, "\n") || strings.Contains(candidate, "\n") {
		return diff.Lines(original, candidate)
	}
	return diff.Inline(original, candidate)
}
