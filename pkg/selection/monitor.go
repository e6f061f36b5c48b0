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

// Package selection polls the platform UI-introspection interface to
// determine the currently selected text in the foreground application,
// without any cooperation from that application. Change detection is an
// explicit timer-driven state machine deduplicating on the last known value;
// Poll is exported so tests drive synthetic ticks directly.
package selection

import (
	"context"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/retext/pkg/clipboard"
	"github.com/walteh/retext/pkg/uiprobe"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultInterval is the poll interval
	DefaultInterval = 300 * time.Millisecond

	// DefaultMinLength filters incidental one- or two-character selections
	DefaultMinLength = 3
)

// 🔧 Options configures a Monitor
type Options struct {
	// Introspector is the platform introspection backend (required)
	Introspector uiprobe.Introspector

	// Synthesizer posts synthetic copy events for the clipboard fallback
	// strategy; without it the fallback is skipped
	Synthesizer uiprobe.Synthesizer

	// Clipboard is used by the clipboard fallback strategy
	Clipboard clipboard.Clipboard

	// Interval is the poll interval (default 300ms)
	Interval time.Duration

	// MinLength is the minimum selection length in runes (default 3)
	MinLength int

	// IgnoreApps holds doublestar globs matched against bundle IDs;
	// selections inside matching applications are never reported
	IgnoreApps []string

	// CopySettle is how long a synthesized copy gets to land on the
	// clipboard before it is read back (zero for the emulated backend)
	CopySettle time.Duration

	// EventBuffer is the event channel capacity (default 16)
	EventBuffer int
}

// 👀 Monitor detects foreground selections and emits events in detection order
type Monitor struct {
	intro uiprobe.Introspector
	synth uiprobe.Synthesizer
	clip  clipboard.Clipboard
	opts  Options

	events chan Event

	mu         sync.Mutex
	lastText   string
	cleared    bool
	signaled   bool // permission event already emitted
	cancelLoop context.CancelFunc
}

// 🏭 New creates a monitor
func New(opts Options) (*Monitor, error) {
	if opts.Introspector == nil {
		return nil, errors.Errorf("introspector is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 16
	}
	return &Monitor{
		intro:   opts.Introspector,
		synth:   opts.Synthesizer,
		clip:    opts.Clipboard,
		opts:    opts,
		events:  make(chan Event, opts.EventBuffer),
		cleared: true,
	}, nil
}

// Events returns the monitor's event stream
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Start begins the fixed-interval poll loop. If introspection access is
// denied it emits a one-time permission event and does not poll: retrying
// without consent cannot succeed.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.intro.CheckAccess(ctx); err != nil {
		if errors.Is(err, uiprobe.ErrPermissionDenied) {
			m.signalPermission()
			return errors.Errorf("starting monitor: %w", err)
		}
		return errors.Errorf("checking introspection access: %w", err)
	}

	m.mu.Lock()
	if m.cancelLoop != nil {
		m.mu.Unlock()
		return errors.Errorf("monitor already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancelLoop = cancel
	m.mu.Unlock()

	go m.loop(loopCtx)
	return nil
}

// Stop halts polling and clears cached state
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelLoop != nil {
		m.cancelLoop()
		m.cancelLoop = nil
	}
	m.lastText = ""
	m.cleared = true
}

func (m *Monitor) loop(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Poll(ctx); err != nil {
				if errors.Is(err, uiprobe.ErrPermissionDenied) {
					logger.Warn().Msg("introspection access revoked, monitor stopping")
					return
				}
				logger.Debug().Err(err).Msg("selection poll failed")
			}
		}
	}
}

// Poll performs a single detection tick: extract the current selection and
// emit at most one event. Exported so tests can feed synthetic ticks.
func (m *Monitor) Poll(ctx context.Context) error {
	el, err := m.intro.FocusedElement(ctx)
	if err != nil {
		if errors.Is(err, uiprobe.ErrPermissionDenied) {
			m.signalPermission()
			return errors.Errorf("polling focused element: %w", err)
		}
		// Nothing focused is an ordinary empty-selection state.
		m.maybeClear()
		return nil
	}

	if m.ignored(el.App().BundleID) {
		m.maybeClear()
		return nil
	}

	text, err := m.extract(ctx, el)
	if err != nil {
		return errors.Errorf("extracting selection: %w", err)
	}

	if len([]rune(text)) < m.opts.MinLength {
		// Too short to act on; treated like an empty selection.
		m.maybeClear()
		return nil
	}

	m.mu.Lock()
	if text == m.lastText {
		m.mu.Unlock()
		return nil
	}
	m.lastText = text
	m.cleared = false
	m.mu.Unlock()

	bounds, _ := el.Bounds(ctx)
	snap := &Snapshot{
		Text:       text,
		App:        el.App(),
		Bounds:     bounds,
		CapturedAt: time.Now(),
	}
	zerolog.Ctx(ctx).Debug().
		Str("app", snap.App.Name).
		Int("length", len([]rune(text))).
		Msg("selection changed")
	m.events <- Event{Kind: EventChanged, Snapshot: snap}
	return nil
}

// extract runs the three extraction strategies in order, stopping at the
// first success.
func (m *Monitor) extract(ctx context.Context, el uiprobe.Element) (string, error) {
	// Strategy 1: the control exposes a selected-text attribute directly.
	if text, err := el.SelectedText(ctx); err == nil {
		return text, nil
	}

	// Strategy 2: slice the full value by the reported selection range,
	// discarding stale ranges from a just-changed document.
	if value, err := el.Value(ctx); err == nil {
		if r, err := el.SelectionRange(ctx); err == nil && r.ValidFor(value) {
			runes := []rune(value)
			return string(runes[r.Start:r.End()]), nil
		}
	}

	// Strategy 3: synthesize a copy and briefly capture the clipboard. This
	// overwrites shared state, so the prior contents are always restored and
	// the capture area is emptied first so an empty copy cannot leak them.
	if m.synth == nil || m.clip == nil {
		return "", nil
	}
	return m.extractViaClipboard(ctx)
}

func (m *Monitor) extractViaClipboard(ctx context.Context) (string, error) {
	restorer, err := clipboard.Save(m.clip)
	if err != nil {
		return "", errors.Errorf("saving clipboard before copy: %w", err)
	}
	defer func() {
		_ = restorer.Restore()
	}()

	if err := m.clip.Write(""); err != nil {
		return "", errors.Errorf("clearing clipboard before copy: %w", err)
	}
	if err := m.synth.PressCopy(ctx); err != nil {
		return "", errors.Errorf("synthesizing copy: %w", err)
	}
	if m.opts.CopySettle > 0 {
		select {
		case <-ctx.Done():
			return "", errors.Errorf("waiting for copy: %w", ctx.Err())
		case <-time.After(m.opts.CopySettle):
		}
	}

	captured, err := m.clip.Read()
	if err != nil {
		return "", errors.Errorf("reading clipboard after copy: %w", err)
	}
	return captured, nil
}

func (m *Monitor) ignored(bundleID string) bool {
	for _, pattern := range m.opts.IgnoreApps {
		if ok, err := doublestar.Match(pattern, bundleID); err == nil && ok {
			return true
		}
	}
	return false
}

func (m *Monitor) maybeClear() {
	m.mu.Lock()
	if m.cleared {
		m.mu.Unlock()
		return
	}
	m.cleared = true
	m.lastText = ""
	m.mu.Unlock()
	m.events <- Event{Kind: EventCleared}
}

func (m *Monitor) signalPermission() {
	m.mu.Lock()
	if m.signaled {
		m.mu.Unlock()
		return
	}
	m.signaled = true
	m.mu.Unlock()
	m.events <- Event{Kind: EventPermissionRequired}
}
