package replace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/retext/pkg/clipboard"
	"github.com/walteh/retext/pkg/uiprobe"
	"gitlab.com/tozd/go/errors"
)

func newControl(text string, sel uiprobe.Range, caps uiprobe.ControlCaps) *uiprobe.EmulatedControl {
	return uiprobe.NewEmulatedControl(uiprobe.EmulatedOptions{
		App:       uiprobe.AppInfo{Name: "Notes", BundleID: "com.example.notes"},
		Text:      text,
		Selection: sel,
		Caps:      &caps,
	})
}

func TestReplace_AttributeStrategy(t *testing.T) {
	ctx := context.Background()
	control := newControl("say hello world now", uiprobe.Range{Start: 4, Length: 11}, uiprobe.AllCaps())
	engine := New(Options{History: NewHistory(10)})

	result, err := engine.Replace(ctx, control, Request{
		Original:    "hello world",
		Replacement: "HELLO",
		Mode:        ModeReplaceSelection,
	})
	require.NoError(t, err)

	assert.Equal(t, "attribute", result.Strategy)
	assert.Equal(t, "say HELLO now", control.Text())
	assert.Equal(t, 1, engine.HistorySize())
}

func TestReplace_FallsThroughToRangeStrategy(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.AllCaps()
	caps.SetSelectedText = false // host refuses the attribute set
	control := newControl("say hello world now", uiprobe.Range{Start: 4, Length: 11}, caps)
	engine := New(Options{History: NewHistory(10)})

	result, err := engine.Replace(ctx, control, Request{
		Original:    "hello world",
		Replacement: "HELLO",
		Mode:        ModeReplaceSelection,
	})
	require.NoError(t, err)

	assert.Equal(t, "range", result.Strategy)
	assert.Equal(t, "say HELLO now", control.Text(), "committed text equals the requested new text")
	assert.Equal(t, 1, engine.HistorySize(), "exactly one undo record, not two")

	// The selection lands at the end of the inserted text.
	r, err := control.SelectionRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, uiprobe.Range{Start: 9, Length: 0}, r)
}

func TestReplace_AllStrategiesFail(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.ControlCaps{Value: true, SelectionRange: true} // nothing settable
	control := newControl("immutable content", uiprobe.Range{Start: 0, Length: 9}, caps)
	engine := New(Options{History: NewHistory(10)})

	_, err := engine.Replace(ctx, control, Request{
		Original:    "immutable",
		Replacement: "changed",
		Mode:        ModeReplaceSelection,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReplacementFailed))

	assert.Equal(t, "immutable content", control.Text(), "no partial mutation")
	assert.Equal(t, 0, engine.HistorySize(), "no undo record on failure")
}

func TestReplace_ClipboardFallback(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.ControlCaps{SelectedText: true} // no settable attributes at all
	control := newControl("keep hello keep", uiprobe.Range{Start: 5, Length: 5}, caps)

	clip := clipboard.NewMemory()
	require.NoError(t, clip.Write("user clipboard contents"))
	intro := uiprobe.NewEmulatedIntrospector(control, clip)

	engine := New(Options{
		History:      NewHistory(10),
		Clipboard:    clip,
		Synthesizer:  intro,
		RestoreDelay: time.Millisecond,
	})

	result, err := engine.Replace(ctx, control, Request{
		Original:    "hello",
		Replacement: "goodbye",
		Mode:        ModeReplaceSelection,
	})
	require.NoError(t, err)
	assert.Equal(t, "clipboard", result.Strategy)
	assert.Equal(t, "keep goodbye keep", control.Text())
	assert.Equal(t, 1, engine.HistorySize())

	// The prior clipboard contents come back after the scheduled restore.
	assert.Eventually(t, func() bool {
		text, err := clip.Read()
		return err == nil && text == "user clipboard contents"
	}, time.Second, 5*time.Millisecond)
}

func TestReplace_InvalidRangeFallsThrough(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.AllCaps()
	caps.SetSelectedText = false
	control := newControl("short", uiprobe.Range{}, caps)
	// Stale range from a document that has since shrunk.
	control.Select(uiprobe.Range{Start: 2, Length: 50})

	engine := New(Options{History: NewHistory(10)})

	_, err := engine.Replace(ctx, control, Request{
		Original:    "hor",
		Replacement: "x",
		Mode:        ModeReplaceSelection,
	})
	require.Error(t, err)
	// invalid-range is internal: with no further strategy available the
	// operation surfaces as replacement-failed, and nothing changed.
	assert.True(t, errors.Is(err, ErrReplacementFailed))
	assert.Equal(t, "short", control.Text())
}

func TestReplace_InsertModes(t *testing.T) {
	tests := []struct {
		name        string
		mode        Mode
		sel         uiprobe.Range
		replacement string
		want        string
	}{
		{
			name:        "insert before",
			mode:        ModeInsertBefore,
			sel:         uiprobe.Range{Start: 6, Length: 5},
			replacement: "brave ",
			want:        "Hello brave world",
		},
		{
			name:        "insert after",
			mode:        ModeInsertAfter,
			sel:         uiprobe.Range{Start: 0, Length: 5},
			replacement: " there",
			want:        "Hello there world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			caps := uiprobe.AllCaps()
			caps.SetSelectedText = false
			control := newControl("Hello world", tt.sel, caps)
			engine := New(Options{History: NewHistory(10)})

			result, err := engine.Replace(ctx, control, Request{
				Original:    "selection",
				Replacement: tt.replacement,
				Mode:        tt.mode,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, control.Text())
			// Inserts overwrite nothing.
			assert.Equal(t, "", result.Record.Original)
		})
	}
}

func TestReplace_ParagraphMode(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.AllCaps()
	caps.SetSelectedText = false
	text := "para one\n\npara two line\nsecond line\n\npara three"
	control := newControl(text, uiprobe.Range{Start: 15, Length: 3}, caps) // "two"
	engine := New(Options{History: NewHistory(10)})

	result, err := engine.Replace(ctx, control, Request{
		Original:    "two",
		Replacement: "NEW",
		Mode:        ModeReplaceParagraph,
	})
	require.NoError(t, err)
	assert.Equal(t, "para one\n\nNEW\n\npara three", control.Text())
	assert.Equal(t, "para two line\nsecond line", result.Record.Original)
}

func TestReplace_AllOccurrences(t *testing.T) {
	ctx := context.Background()
	caps := uiprobe.AllCaps()
	caps.SetSelectedText = false
	control := newControl("foo bar foo baz foo", uiprobe.Range{Start: 0, Length: 3}, caps)
	engine := New(Options{History: NewHistory(10)})

	result, err := engine.Replace(ctx, control, Request{
		Original:    "foo",
		Replacement: "qux",
		Mode:        ModeReplaceAll,
	})
	require.NoError(t, err)
	assert.Equal(t, "qux bar qux baz qux", control.Text())
	assert.True(t, result.Record.All)

	// Case-sensitive and exact: "Foo" would not have matched.
	require.NoError(t, engine.Undo(ctx, control))
	assert.Equal(t, "foo bar foo baz foo", control.Text())
}

func TestUndo_StrictInverse(t *testing.T) {
	tests := []struct {
		name string
		caps uiprobe.ControlCaps
	}{
		{name: "attribute strategy", caps: uiprobe.AllCaps()},
		{name: "range strategy", caps: func() uiprobe.ControlCaps {
			c := uiprobe.AllCaps()
			c.SetSelectedText = false
			return c
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			control := newControl("alpha beta gamma", uiprobe.Range{Start: 6, Length: 4}, tt.caps)
			engine := New(Options{History: NewHistory(10)})

			_, err := engine.Replace(ctx, control, Request{
				Original:    "beta",
				Replacement: "delta",
				Mode:        ModeReplaceSelection,
			})
			require.NoError(t, err)
			require.Equal(t, "alpha delta gamma", control.Text())

			require.NoError(t, engine.Undo(ctx, control))
			assert.Equal(t, "alpha beta gamma", control.Text())
			assert.Equal(t, 0, engine.HistorySize())
		})
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	control := newControl("text", uiprobe.Range{}, uiprobe.AllCaps())
	engine := New(Options{History: NewHistory(10)})

	err := engine.Undo(ctx, control)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndoUnavailable))
}

func TestUndo_FailureRequeuesRecord(t *testing.T) {
	ctx := context.Background()
	control := newControl("alpha beta gamma", uiprobe.Range{Start: 6, Length: 4}, uiprobe.AllCaps())
	engine := New(Options{History: NewHistory(10)})

	_, err := engine.Replace(ctx, control, Request{
		Original:    "beta",
		Replacement: "delta",
		Mode:        ModeReplaceSelection,
	})
	require.NoError(t, err)
	require.Equal(t, 1, engine.HistorySize())

	// Focus moved to a control that rejects value writes: restoration fails
	// and the record goes back on the history.
	readOnly := newControl("other document", uiprobe.Range{}, uiprobe.ControlCaps{Value: true})
	err = engine.Undo(ctx, readOnly)
	require.Error(t, err)
	assert.Equal(t, 1, engine.HistorySize(), "failed undo must not lose history")
}

func TestUndo_TargetGone(t *testing.T) {
	ctx := context.Background()
	control := newControl("alpha beta gamma", uiprobe.Range{Start: 6, Length: 4}, uiprobe.AllCaps())
	engine := New(Options{History: NewHistory(10)})

	_, err := engine.Replace(ctx, control, Request{
		Original:    "beta",
		Replacement: "delta",
		Mode:        ModeReplaceSelection,
	})
	require.NoError(t, err)

	// The document changed underneath: the replacement text is gone.
	require.NoError(t, control.SetValue(ctx, "completely different now"))
	err = engine.Undo(ctx, control)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndoUnavailable))
	assert.Equal(t, 1, engine.HistorySize())
}

func TestReplace_InvalidMode(t *testing.T) {
	ctx := context.Background()
	control := newControl("text", uiprobe.Range{}, uiprobe.AllCaps())
	engine := New(Options{History: NewHistory(10)})

	_, err := engine.Replace(ctx, control, Request{Replacement: "x", Mode: "sideways"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid replacement mode")
}
