package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReplaceOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.LogReplaceOperation(context.Background(), ReplaceOperation{
		App:      "Notes",
		Mode:     "replace-selection",
		Strategy: "attribute",
		Chars:    42,
	})

	out := buf.String()
	assert.Contains(t, out, "Notes")
	assert.Contains(t, out, "replace-selection")
	assert.Contains(t, out, "attribute")
	assert.Contains(t, out, "42 chars")
	assert.Contains(t, out, "✓")
}

func TestLogReplaceOperation_FailedAndUndone(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.LogReplaceOperation(context.Background(), ReplaceOperation{
		App:    "Mail",
		Mode:   "replace-selection",
		Failed: true,
	})
	assert.Contains(t, buf.String(), "✗")
	assert.Contains(t, buf.String(), "-", "missing strategy renders as a dash")

	buf.Reset()
	logger.LogReplaceOperation(context.Background(), ReplaceOperation{
		App:      "Mail",
		Mode:     "replace-selection",
		Strategy: "range",
		Undone:   true,
	})
	assert.Contains(t, buf.String(), "↩")
}

func TestLogSelection(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.LogSelection(context.Background(), "Safari", 17)
	out := buf.String()
	assert.Contains(t, out, "Safari")
	assert.Contains(t, out, "17 chars selected")
}

func TestConsoleMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.Header("watching for selections")
	logger.Success("committed")
	logger.Warning("clipboard fallback in use")
	logger.Error("permission denied")
	logger.Infof("polling every %dms", 300)

	out := buf.String()
	assert.Contains(t, out, "retext")
	assert.Contains(t, out, "watching for selections")
	assert.Contains(t, out, "committed")
	assert.Contains(t, out, "clipboard fallback in use")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "polling every 300ms")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	ctx := NewContext(context.Background(), logger)
	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_PanicsWhenAbsent(t *testing.T) {
	require.Panics(t, func() {
		FromContext(context.Background())
	})
}
