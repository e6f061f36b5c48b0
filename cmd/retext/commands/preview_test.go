package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/retext/pkg/diff"
)

func TestRenderUnified_CoalescesReplacedLines(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	segments := diff.Lines("keep\nold line\ntail", "keep\nnew line\ntail")
	require.NoError(t, renderPreview(&buf, segments, "unified"))

	out := buf.String()
	assert.Contains(t, out, "  keep")
	assert.Contains(t, out, "~ new line", "a replaced line renders as modified, not delete+insert")
	assert.NotContains(t, out, "- old line")
	assert.Contains(t, out, "  tail")
}

func TestRenderUnified_UnevenEditStaysRaw(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	segments := diff.Lines("only line", "first line\nsecond line")
	require.NoError(t, renderPreview(&buf, segments, "unified"))

	out := buf.String()
	assert.Contains(t, out, "- only line")
	assert.Contains(t, out, "+ first line")
	assert.Contains(t, out, "+ second line")
}

func TestRenderInline(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	segments := []diff.Segment{
		{Kind: diff.Unchanged, Text: "keep ", Line: -1},
		{Kind: diff.Deleted, Text: "old", Line: -1},
		{Kind: diff.Inserted, Text: "new", Line: -1},
	}
	require.NoError(t, renderPreview(&buf, segments, "inline"))
	assert.Equal(t, "keep oldnew", strings.TrimRight(buf.String(), "\n"))
}

func TestRenderPreview_UnknownView(t *testing.T) {
	var buf bytes.Buffer
	err := renderPreview(&buf, nil, "holographic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preview view")
}
